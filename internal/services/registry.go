package services

import (
	"filemanager/internal/config"
	"filemanager/internal/repositories"
	"filemanager/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	FolderService      FolderService
	FileService        FileService
	FileStorageService FileStorageService
	FileURLService     FileURLService
	TagService         TagService
	BackfillService    BackfillService
}

// NewServiceContainer собирает сервисы поверх пары дисков
func NewServiceContainer(files config.FileConfig, disks *storage.Disks, clock Clock) *ServiceContainer {
	folderRepo := repositories.NewFolderRepository()
	fileRepo := repositories.NewFileRepository()
	tagRepo := repositories.NewTagRepository()
	taskRepo := repositories.NewTaskRepository()

	fileStorage := NewFileStorageService(disks, fileRepo, files.ObjectNamespace)
	fileURL := NewFileURLService(disks, fileRepo, files.SignedURLTTL(), clock)

	return &ServiceContainer{
		FolderService:      NewFolderService(folderRepo, fileRepo, tagRepo, fileStorage, files.BreadcrumbMaxLevel),
		FileService:        NewFileService(fileRepo, folderRepo, tagRepo, fileStorage, fileURL),
		FileStorageService: fileStorage,
		FileURLService:     fileURL,
		TagService:         NewTagService(tagRepo, taskRepo, fileRepo, folderRepo, clock),
		BackfillService:    NewBackfillService(fileRepo, fileURL),
	}
}
