package models

// Task - внешняя сущность, к которой можно привязать теги
type Task struct {
	BaseModelWithDeleted
	Title string `gorm:"size:255;not null" json:"title"`

	Tags []Tag `gorm:"-" json:"tags,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
