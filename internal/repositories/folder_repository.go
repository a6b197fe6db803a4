package repositories

import (
	"errors"

	"filemanager/internal/models"

	"gorm.io/gorm"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

// FolderNode - id папки и ее родителя, без остальных колонок
type FolderNode struct {
	ID       uint
	ParentID *uint
}

type FolderRepository interface {
	Create(db *gorm.DB, folder *models.Folder) error
	Update(db *gorm.DB, folder *models.Folder) error
	FindByID(db *gorm.DB, id uint) (*models.Folder, error)
	FindByIDWithTrashed(db *gorm.DB, id uint) (*models.Folder, error)
	FindChildren(db *gorm.DB, parentID *uint) ([]models.Folder, error)
	FindChildNodes(db *gorm.DB, parentIDs []uint, withTrashed bool) ([]FolderNode, error)
	FindTrashed(db *gorm.DB) ([]models.Folder, error)

	// Массовые операции: одно выражение на вызов
	SoftDeleteByIDs(db *gorm.DB, ids []uint) error
	RestoreByIDs(db *gorm.DB, ids []uint) error
	ForceDeleteByIDs(db *gorm.DB, ids []uint) error
}

type FolderRepositoryImpl struct{}

func NewFolderRepository() FolderRepository {
	return &FolderRepositoryImpl{}
}

func (r *FolderRepositoryImpl) Create(db *gorm.DB, folder *models.Folder) error {
	return db.Create(folder).Error
}

func (r *FolderRepositoryImpl) Update(db *gorm.DB, folder *models.Folder) error {
	return db.Model(folder).Select("name", "description", "is_private", "parent_id", "updated_at").Updates(folder).Error
}

func (r *FolderRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Folder, error) {
	return r.find(db, id)
}

// FindByIDWithTrashed находит папку, даже если она мягко удалена
func (r *FolderRepositoryImpl) FindByIDWithTrashed(db *gorm.DB, id uint) (*models.Folder, error) {
	return r.find(db.Unscoped(), id)
}

func (r *FolderRepositoryImpl) find(db *gorm.DB, id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := db.First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	return &folder, nil
}

// FindChildren - прямые дочерние папки, по имени. parentID == nil -> корень.
func (r *FolderRepositoryImpl) FindChildren(db *gorm.DB, parentID *uint) ([]models.Folder, error) {
	var folders []models.Folder
	query := db.Model(&models.Folder{})
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Order("name ASC").Order("id ASC").Find(&folders).Error
	return folders, err
}

// FindChildNodes - дети сразу нескольких папок (один уровень дерева за запрос)
func (r *FolderRepositoryImpl) FindChildNodes(db *gorm.DB, parentIDs []uint, withTrashed bool) ([]FolderNode, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	if withTrashed {
		db = db.Unscoped()
	}

	var nodes []FolderNode
	err := db.Model(&models.Folder{}).
		Select("id", "parent_id").
		Where("parent_id IN ?", parentIDs).
		Order("id ASC").
		Scan(&nodes).Error
	return nodes, err
}

func (r *FolderRepositoryImpl) FindTrashed(db *gorm.DB) ([]models.Folder, error) {
	var folders []models.Folder
	err := db.Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&folders).Error
	return folders, err
}

func (r *FolderRepositoryImpl) SoftDeleteByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("id IN ?", ids).Delete(&models.Folder{}).Error
}

func (r *FolderRepositoryImpl) RestoreByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Model(&models.Folder{}).
		Where("id IN ?", ids).
		Where("deleted_at IS NOT NULL").
		Update("deleted_at", nil).Error
}

func (r *FolderRepositoryImpl) ForceDeleteByIDs(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Where("id IN ?", ids).Delete(&models.Folder{}).Error
}
