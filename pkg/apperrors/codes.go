package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные и неизвестные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeStorageError  ErrorCode = "STORAGE_ERROR"

	// Ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeEmptySelection   ErrorCode = "EMPTY_SELECTION"

	// Аутентификация
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Статусы конверта ответа
const (
	StatusSuccess   = "Success"
	StatusError     = "Error"
	StatusNoContent = "No Content"
)

// HTTP-коды, которые использует API помимо стандартных
const (
	// StatusNotFoundSoft - "мягкий" not found: запрос корректен, но данных нет
	StatusNotFoundSoft = 210
)

// NoContentMessage - сообщение для ответа 210
const NoContentMessage = "There is no relevant information for selected query"
