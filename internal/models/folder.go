package models

import (
	"gorm.io/datatypes"
)

// Folder - узел дерева папок. ParentID - слабая ссылка: родитель может
// быть удален (мягко или окончательно), цепочка обрывается на нем.
type Folder struct {
	BaseModelWithDeleted
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	IsPrivate   bool           `gorm:"not null;default:false" json:"is_private"`
	Description *string        `gorm:"type:text" json:"description"`
	CreatedBy   datatypes.JSON `json:"created_by,omitempty"`

	Tags []Tag `gorm:"-" json:"tags,omitempty"`
}

func (Folder) TableName() string {
	return "folders"
}
