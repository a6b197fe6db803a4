package models

import "time"

// DefaultTagColor - цвет новых тегов
const DefaultTagColor = "#ADD8E6"

// TagModule - закрытый набор сущностей, к которым можно привязать теги
type TagModule string

const (
	TagModuleTasks   TagModule = "tasks"
	TagModuleFiles   TagModule = "files"
	TagModuleFolders TagModule = "folders"
)

// ParseTagModule принимает и единственное число (task/file/folder)
func ParseTagModule(s string) (TagModule, bool) {
	switch s {
	case "tasks", "task":
		return TagModuleTasks, true
	case "files", "file":
		return TagModuleFiles, true
	case "folders", "folder":
		return TagModuleFolders, true
	default:
		return "", false
	}
}

type Tag struct {
	BaseModel
	Module *string `gorm:"size:50;index" json:"module"`
	Name   string  `gorm:"size:255;not null;index" json:"name"`
	Color  string  `gorm:"size:20;not null;default:'#ADD8E6'" json:"color"`
}

func (Tag) TableName() string {
	return "tags"
}

// TagAssociation - связь тега с парой (module, entity_id)
type TagAssociation struct {
	TagID     uint      `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
	Module    TagModule `gorm:"primaryKey;size:20" json:"module"`
	EntityID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (TagAssociation) TableName() string {
	return "tag_associations"
}
