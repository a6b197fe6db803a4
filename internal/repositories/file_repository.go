package repositories

import (
	"errors"

	"filemanager/internal/models"

	"gorm.io/gorm"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(db *gorm.DB, file *models.File) error
	UpdateColumns(db *gorm.DB, file *models.File, columns map[string]interface{}) error
	FindByID(db *gorm.DB, id uint) (*models.File, error)
	FindByIDWithTrashed(db *gorm.DB, id uint) (*models.File, error)
	FindByIDsWithTrashed(db *gorm.DB, ids []uint) ([]models.File, error)
	FindInFolder(db *gorm.DB, folderID *uint) ([]models.File, error)
	FindByFolderIDs(db *gorm.DB, folderIDs []uint, withTrashed bool) ([]models.File, error)
	FindTrashed(db *gorm.DB) ([]models.File, error)
	FindWithPathInBatches(db *gorm.DB, batchSize int, fn func(batch []models.File) error) error

	SoftDeleteByIDs(db *gorm.DB, ids []uint) error
	RestoreByIDs(db *gorm.DB, ids []uint) error
	ForceDeleteByIDs(db *gorm.DB, ids []uint) error
	SoftDeleteByFolderIDs(db *gorm.DB, folderIDs []uint) error
	RestoreByFolderIDs(db *gorm.DB, folderIDs []uint) error

	// FileEntity
	CreateEntity(db *gorm.DB, entity *models.FileEntity) error
	FindEntities(db *gorm.DB, fileID uint) ([]models.FileEntity, error)
	DeleteEntitiesByFileIDs(db *gorm.DB, fileIDs []uint) error
}

type FileRepositoryImpl struct{}

func NewFileRepository() FileRepository {
	return &FileRepositoryImpl{}
}

func (r *FileRepositoryImpl) Create(db *gorm.DB, file *models.File) error {
	return db.Create(file).Error
}

// UpdateColumns обновляет только переданные колонки и синхронизирует структуру
func (r *FileRepositoryImpl) UpdateColumns(db *gorm.DB, file *models.File, columns map[string]interface{}) error {
	return db.Unscoped().Model(file).Updates(columns).Error
}

func (r *FileRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.File, error) {
	return r.find(db, id)
}

func (r *FileRepositoryImpl) FindByIDWithTrashed(db *gorm.DB, id uint) (*models.File, error) {
	return r.find(db.Unscoped(), id)
}

func (r *FileRepositoryImpl) find(db *gorm.DB, id uint) (*models.File, error) {
	var file models.File
	if err := db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (r *FileRepositoryImpl) FindByIDsWithTrashed(db *gorm.DB, ids []uint) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var files []models.File
	err := db.Unscoped().Where("id IN ?", ids).Order("id ASC").Find(&files).Error
	return files, err
}

// FindInFolder - файлы папки без entity-файлов, новые первыми. folderID == nil -> корень.
func (r *FileRepositoryImpl) FindInFolder(db *gorm.DB, folderID *uint) ([]models.File, error) {
	var files []models.File
	query := db.Model(&models.File{}).Where("is_entity = ?", false)
	if folderID == nil {
		query = query.Where("folders_id IS NULL")
	} else {
		query = query.Where("folders_id = ?", *folderID)
	}
	err := query.Order("created_at DESC").Order("id DESC").Find(&files).Error
	return files, err
}

// FindByFolderIDs - все файлы (включая entity) в наборе папок
func (r *FileRepositoryImpl) FindByFolderIDs(db *gorm.DB, folderIDs []uint, withTrashed bool) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	if withTrashed {
		db = db.Unscoped()
	}
	var files []models.File
	err := db.Where("folders_id IN ?", folderIDs).Order("id ASC").Find(&files).Error
	return files, err
}

func (r *FileRepositoryImpl) FindTrashed(db *gorm.DB) ([]models.File, error) {
	var files []models.File
	err := db.Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&files).Error
	return files, err
}

// FindWithPathInBatches обходит все файлы (включая удаленные) с непустым path
func (r *FileRepositoryImpl) FindWithPathInBatches(db *gorm.DB, batchSize int, fn func(batch []models.File) error) error {
	var batch []models.File
	return db.Unscoped().
		Where("path IS NOT NULL AND path <> ''").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

func (r *FileRepositoryImpl) SoftDeleteByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("id IN ?", ids).Delete(&models.File{}).Error
}

func (r *FileRepositoryImpl) RestoreByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Model(&models.File{}).
		Where("id IN ?", ids).
		Where("deleted_at IS NOT NULL").
		Update("deleted_at", nil).Error
}

func (r *FileRepositoryImpl) ForceDeleteByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Where("id IN ?", ids).Delete(&models.File{}).Error
}

func (r *FileRepositoryImpl) SoftDeleteByFolderIDs(db *gorm.DB, folderIDs []uint) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return db.Where("folders_id IN ?", folderIDs).Delete(&models.File{}).Error
}

func (r *FileRepositoryImpl) RestoreByFolderIDs(db *gorm.DB, folderIDs []uint) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return db.Unscoped().Model(&models.File{}).
		Where("folders_id IN ?", folderIDs).
		Where("deleted_at IS NOT NULL").
		Update("deleted_at", nil).Error
}

// ============================================
// FileEntity
// ============================================

func (r *FileRepositoryImpl) CreateEntity(db *gorm.DB, entity *models.FileEntity) error {
	return db.Create(entity).Error
}

func (r *FileRepositoryImpl) FindEntities(db *gorm.DB, fileID uint) ([]models.FileEntity, error) {
	var entities []models.FileEntity
	err := db.Where("files_id = ?", fileID).Order("id ASC").Find(&entities).Error
	return entities, err
}

func (r *FileRepositoryImpl) DeleteEntitiesByFileIDs(db *gorm.DB, fileIDs []uint) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return db.Where("files_id IN ?", fileIDs).Delete(&models.FileEntity{}).Error
}
