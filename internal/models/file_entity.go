package models

// FileEntity привязывает файл к внешней сущности (entity_type + entity_id)
type FileEntity struct {
	BaseModel
	FilesID    uint   `gorm:"column:files_id;not null;index" json:"files_id"`
	EntityType string `gorm:"size:100;not null;index:idx_files_entities_entity" json:"entity_type"`
	EntityID   string `gorm:"size:64;not null;index:idx_files_entities_entity" json:"entity_id"`
}

func (FileEntity) TableName() string {
	return "files_entities"
}
