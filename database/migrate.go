package database

import (
	"fmt"
	"log"

	"filemanager/internal/models"

	"gorm.io/gorm"
)

// Models - все модели, которыми управляет AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&models.Folder{},
		&models.File{},
		&models.FileEntity{},
		&models.Tag{},
		&models.TagAssociation{},
		&models.Task{},
	}
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Println("AutoMigrate completed")
	return nil
}
