package repositories

import (
	"errors"

	"filemanager/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

type TaskRepository interface {
	Create(db *gorm.DB, task *models.Task) error
	FindByID(db *gorm.DB, id uint) (*models.Task, error)
}

type TaskRepositoryImpl struct{}

func NewTaskRepository() TaskRepository {
	return &TaskRepositoryImpl{}
}

func (r *TaskRepositoryImpl) Create(db *gorm.DB, task *models.Task) error {
	return db.Create(task).Error
}

func (r *TaskRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
