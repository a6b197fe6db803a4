package repositories

import (
	"errors"
	"time"

	"filemanager/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTagNotFound = errors.New("tag not found")
)

type TagRepository interface {
	Create(db *gorm.DB, tag *models.Tag) error
	FindByName(db *gorm.DB, name string) (*models.Tag, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]models.Tag, error)
	FindForEntity(db *gorm.DB, module models.TagModule, entityID uint) ([]models.Tag, error)
	FindForEntities(db *gorm.DB, module models.TagModule, entityIDs []uint) (map[uint][]models.Tag, error)

	// SyncAssociations заменяет набор тегов сущности целиком и возвращает новый набор
	SyncAssociations(db *gorm.DB, module models.TagModule, entityID uint, tagIDs []uint, at time.Time) ([]models.Tag, error)
	DeleteAssociations(db *gorm.DB, module models.TagModule, entityIDs []uint) error
}

type TagRepositoryImpl struct{}

type tagWithEntity struct {
	models.Tag
	EntityID uint
}

func NewTagRepository() TagRepository {
	return &TagRepositoryImpl{}
}

func (r *TagRepositoryImpl) Create(db *gorm.DB, tag *models.Tag) error {
	if tag.Color == "" {
		tag.Color = models.DefaultTagColor
	}
	return db.Create(tag).Error
}

// FindByName - точное совпадение имени; при дублях берется самый старый тег
func (r *TagRepositoryImpl) FindByName(db *gorm.DB, name string) (*models.Tag, error) {
	var tag models.Tag
	err := db.Where("name = ?", name).Order("id ASC").First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := db.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *TagRepositoryImpl) FindForEntity(db *gorm.DB, module models.TagModule, entityID uint) ([]models.Tag, error) {
	byEntity, err := r.FindForEntities(db, module, []uint{entityID})
	if err != nil {
		return nil, err
	}
	tags := byEntity[entityID]
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// FindForEntities - теги для нескольких сущностей одного модуля одним запросом
func (r *TagRepositoryImpl) FindForEntities(db *gorm.DB, module models.TagModule, entityIDs []uint) (map[uint][]models.Tag, error) {
	result := make(map[uint][]models.Tag, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}

	var rows []tagWithEntity
	err := db.Table("tags").
		Select("tags.*, tag_associations.entity_id AS entity_id").
		Joins("JOIN tag_associations ON tag_associations.tag_id = tags.id").
		Where("tag_associations.module = ? AND tag_associations.entity_id IN ?", module, entityIDs).
		Order("tag_associations.entity_id ASC").
		Order("tags.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.EntityID] = append(result[row.EntityID], row.Tag)
	}
	return result, nil
}

func (r *TagRepositoryImpl) SyncAssociations(db *gorm.DB, module models.TagModule, entityID uint, tagIDs []uint, at time.Time) ([]models.Tag, error) {
	if err := db.Where("module = ? AND entity_id = ?", module, entityID).
		Delete(&models.TagAssociation{}).Error; err != nil {
		return nil, err
	}

	if len(tagIDs) > 0 {
		associations := make([]models.TagAssociation, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			associations = append(associations, models.TagAssociation{
				TagID:     tagID,
				Module:    module,
				EntityID:  entityID,
				CreatedAt: at,
			})
		}
		if err := db.Create(&associations).Error; err != nil {
			return nil, err
		}
	}

	return r.FindForEntity(db, module, entityID)
}

func (r *TagRepositoryImpl) DeleteAssociations(db *gorm.DB, module models.TagModule, entityIDs []uint) error {
	if len(entityIDs) == 0 {
		return nil
	}
	return db.Where("module = ? AND entity_id IN ?", module, entityIDs).
		Delete(&models.TagAssociation{}).Error
}
