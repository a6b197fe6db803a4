package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - ключ, по которому хранится *gorm.DB в context
const DBContextKey = contextKey("db")

// ActorContextKey - ключ для аутентифицированного актора (models.Actor)
const ActorContextKey = contextKey("actor")
