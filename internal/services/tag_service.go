package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/services/dto"
	"filemanager/pkg/apperrors"

	"gorm.io/gorm"
)

// ============================================
// TAG SERVICE
// ============================================

type TagService interface {
	// UpdateTags заменяет набор тегов сущности: tags_id + теги из tags_new
	UpdateTags(ctx context.Context, db *gorm.DB, module string, id uint, req *dto.UpdateTagsRequest) (*dto.UpdateTagsResult, error)
}

// entityFinder проверяет, что цель тегирования существует
type entityFinder func(db *gorm.DB, id uint) error

type tagService struct {
	tagRepo repositories.TagRepository
	finders map[models.TagModule]entityFinder
	clock   Clock
}

func NewTagService(
	tagRepo repositories.TagRepository,
	taskRepo repositories.TaskRepository,
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	clock Clock,
) TagService {
	if clock == nil {
		clock = SystemClock
	}
	return &tagService{
		tagRepo: tagRepo,
		finders: map[models.TagModule]entityFinder{
			models.TagModuleTasks: func(db *gorm.DB, id uint) error {
				_, err := taskRepo.FindByID(db, id)
				return err
			},
			models.TagModuleFiles: func(db *gorm.DB, id uint) error {
				_, err := fileRepo.FindByID(db, id)
				return err
			},
			models.TagModuleFolders: func(db *gorm.DB, id uint) error {
				_, err := folderRepo.FindByID(db, id)
				return err
			},
		},
		clock: clock,
	}
}

func (s *tagService) UpdateTags(ctx context.Context, db *gorm.DB, moduleName string, id uint, req *dto.UpdateTagsRequest) (*dto.UpdateTagsResult, error) {
	module, ok := models.ParseTagModule(moduleName)
	if !ok {
		return nil, apperrors.FieldError("module", fmt.Sprintf("unknown module %q", moduleName))
	}
	find := s.finders[module]

	if err := find(db.WithContext(ctx), id); err != nil {
		return nil, mapError(err)
	}

	var tags []models.Tag
	err := withTransaction(ctx, db, func(tx *gorm.DB) error {
		ids := dedupe(req.TagsID)
		if len(ids) > 0 {
			existing, err := s.tagRepo.FindByIDs(tx, ids)
			if err != nil {
				return mapError(err)
			}
			if len(existing) != len(ids) {
				return apperrors.FieldError("tags_id", "one or more tags do not exist")
			}
		}

		for _, nt := range req.TagsNew {
			name := strings.TrimSpace(nt.Name)
			if name == "" {
				continue
			}

			tag, err := s.tagRepo.FindByName(tx, name)
			if errors.Is(err, repositories.ErrTagNotFound) {
				moduleValue := string(module)
				tag = &models.Tag{Name: name, Module: &moduleValue}
				if nt.Color != nil {
					tag.Color = strings.TrimSpace(*nt.Color)
				}
				err = s.tagRepo.Create(tx, tag)
			}
			if err != nil {
				return mapError(err)
			}
			ids = append(ids, tag.ID)
		}

		synced, err := s.tagRepo.SyncAssociations(tx, module, id, dedupe(ids), s.clock.Now())
		if err != nil {
			return mapError(err)
		}
		tags = synced
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "tags updated", "module", module, "entity_id", id, "count", len(tags))

	return &dto.UpdateTagsResult{Module: module, ID: id, Tags: tags}, nil
}
