package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	FolderHandler *FolderHandler
	FileHandler   *FileHandler
	TaskHandler   *TaskHandler
	HealthHandler *HealthHandler
}
