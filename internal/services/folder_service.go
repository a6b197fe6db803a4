package services

import (
	"context"
	"errors"

	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/services/dto"
	"filemanager/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	minBreadcrumbLevels = 1
	maxBreadcrumbLevels = 10
)

// ============================================
// FOLDER SERVICE (дерево папок)
// ============================================

type FolderService interface {
	// Просмотр: folderID == nil -> корень
	Browse(ctx context.Context, db *gorm.DB, folderID *uint, maxLevels int) (*dto.BrowseResult, error)
	Breadcrumbs(ctx context.Context, db *gorm.DB, current *models.Folder, maxLevels int) ([]dto.Breadcrumb, error)
	GetAllFolderIDs(ctx context.Context, db *gorm.DB, rootID uint, withTrashed bool) ([]uint, error)

	GetFolder(ctx context.Context, db *gorm.DB, id uint) (*models.Folder, error)
	CreateFolder(ctx context.Context, db *gorm.DB, parentID *uint, req *dto.CreateFolderRequest, actor *models.Actor) (*models.Folder, error)
	UpdateFolder(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateFolderRequest) (*models.Folder, error)
	ListTrashed(ctx context.Context, db *gorm.DB) ([]models.Folder, error)

	// Каскадные операции над поддеревом
	DeleteFolder(ctx context.Context, db *gorm.DB, id uint) error
	MassDeleteFolders(ctx context.Context, db *gorm.DB, ids []uint) error
	RestoreFolder(ctx context.Context, db *gorm.DB, id uint) error
	MassRestoreFolders(ctx context.Context, db *gorm.DB, ids []uint) error
	ForceDeleteFolder(ctx context.Context, db *gorm.DB, id uint) error
	MassForceDeleteFolders(ctx context.Context, db *gorm.DB, ids []uint) error
}

type folderService struct {
	folderRepo       repositories.FolderRepository
	fileRepo         repositories.FileRepository
	tagRepo          repositories.TagRepository
	fileStorage      FileStorageService
	defaultMaxLevels int
}

func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	tagRepo repositories.TagRepository,
	fileStorage FileStorageService,
	defaultMaxLevels int,
) FolderService {
	if defaultMaxLevels <= 0 {
		defaultMaxLevels = 3
	}
	return &folderService{
		folderRepo:       folderRepo,
		fileRepo:         fileRepo,
		tagRepo:          tagRepo,
		fileStorage:      fileStorage,
		defaultMaxLevels: defaultMaxLevels,
	}
}

// ============================================
// ПРОСМОТР
// ============================================

func (s *folderService) Browse(ctx context.Context, db *gorm.DB, folderID *uint, maxLevels int) (*dto.BrowseResult, error) {
	db = db.WithContext(ctx)

	result := &dto.BrowseResult{Breadcrumbs: []dto.Breadcrumb{}}

	if folderID != nil {
		current, err := s.folderRepo.FindByID(db, *folderID)
		if err != nil {
			return nil, mapError(err)
		}
		result.Folder = current
	}

	folders, err := s.folderRepo.FindChildren(db, folderID)
	if err != nil {
		return nil, mapError(err)
	}
	files, err := s.fileRepo.FindInFolder(db, folderID)
	if err != nil {
		return nil, mapError(err)
	}
	result.Folders = nonNilFolders(folders)
	result.Files = nonNilFiles(files)

	if result.Folder != nil {
		crumbs, err := s.Breadcrumbs(ctx, db, result.Folder, maxLevels)
		if err != nil {
			return nil, err
		}
		result.Breadcrumbs = crumbs
	}

	return result, nil
}

// Breadcrumbs строит цепочку корень -> current со скользящим окном
// из последних maxLevels звеньев. Повторный id обрывает подъем.
func (s *folderService) Breadcrumbs(ctx context.Context, db *gorm.DB, current *models.Folder, maxLevels int) ([]dto.Breadcrumb, error) {
	db = db.WithContext(ctx)
	maxLevels = s.clampLevels(maxLevels)

	var chain []models.Folder
	visited := make(map[uint]struct{})

	node := current
	for node != nil {
		if _, ok := visited[node.ID]; ok {
			logger.CtxWarn(ctx, "folder hierarchy cycle detected", "folder_id", node.ID, "current_id", current.ID)
			break
		}
		visited[node.ID] = struct{}{}
		chain = append(chain, *node)

		if node.ParentID == nil {
			break
		}
		parent, err := s.folderRepo.FindByID(db, *node.ParentID)
		if err != nil {
			if errors.Is(err, repositories.ErrFolderNotFound) {
				break
			}
			return nil, mapError(err)
		}
		node = parent
	}

	// корень первым
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	total := len(chain)
	crumbs := make([]dto.Breadcrumb, 0, total)
	for i, folder := range chain {
		crumb := dto.Breadcrumb{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			UpdatedAt: folder.UpdatedAt,
			Hidden:    total-i > maxLevels,
			IsCurrent: folder.ID == current.ID,
			Files:     []models.File{},
		}

		if !crumb.Hidden && !crumb.IsCurrent {
			id := folder.ID
			files, err := s.fileRepo.FindInFolder(db, &id)
			if err != nil {
				return nil, mapError(err)
			}
			crumb.Files = nonNilFiles(files)
		}
		crumbs = append(crumbs, crumb)
	}

	return crumbs, nil
}

func (s *folderService) clampLevels(maxLevels int) int {
	if maxLevels == 0 {
		maxLevels = s.defaultMaxLevels
	}
	if maxLevels < minBreadcrumbLevels {
		return minBreadcrumbLevels
	}
	if maxLevels > maxBreadcrumbLevels {
		return maxBreadcrumbLevels
	}
	return maxLevels
}

// GetAllFolderIDs - корень и все потомки ровно по одному разу, корень первым
func (s *folderService) GetAllFolderIDs(ctx context.Context, db *gorm.DB, rootID uint, withTrashed bool) ([]uint, error) {
	levels, err := s.subtreeLevels(db.WithContext(ctx), []uint{rootID}, withTrashed)
	if err != nil {
		return nil, err
	}
	return flattenLevels(levels), nil
}

// subtreeLevels спускается по дереву уровнями: один запрос на уровень.
// levels[0] - корни, levels[n] - узлы глубины n. Корень, оказавшийся
// потомком другого корня, попадает на свою настоящую глубину.
func (s *folderService) subtreeLevels(db *gorm.DB, roots []uint, withTrashed bool) ([][]uint, error) {
	roots = dedupe(roots)
	if len(roots) == 0 {
		return nil, nil
	}

	// 1. Собираем все ребра поддеревьев
	children := make(map[uint][]uint)
	isChild := make(map[uint]bool)
	seen := make(map[uint]struct{}, len(roots))
	for _, id := range roots {
		seen[id] = struct{}{}
	}

	frontier := roots
	for len(frontier) > 0 {
		nodes, err := s.folderRepo.FindChildNodes(db, frontier, withTrashed)
		if err != nil {
			return nil, mapError(err)
		}

		var next []uint
		for _, n := range nodes {
			if n.ParentID == nil {
				continue
			}
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
			isChild[n.ID] = true
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			next = append(next, n.ID)
		}
		frontier = next
	}

	// 2. Раскладываем по глубине от настоящих вершин
	var tops []uint
	for _, id := range roots {
		if !isChild[id] {
			tops = append(tops, id)
		}
	}

	var levels [][]uint
	placed := make(map[uint]struct{}, len(seen))
	place := func(start []uint) {
		var level []uint
		for _, id := range start {
			if _, ok := placed[id]; ok {
				continue
			}
			placed[id] = struct{}{}
			level = append(level, id)
		}

		for depth := 0; len(level) > 0; depth++ {
			if depth == len(levels) {
				levels = append(levels, nil)
			}
			levels[depth] = append(levels[depth], level...)

			var next []uint
			for _, id := range level {
				for _, child := range children[id] {
					if _, ok := placed[child]; ok {
						continue
					}
					placed[child] = struct{}{}
					next = append(next, child)
				}
			}
			level = next
		}
	}

	place(tops)
	// корни внутри испорченного цикла
	for _, id := range roots {
		if _, ok := placed[id]; !ok {
			place([]uint{id})
		}
	}

	return levels, nil
}

func flattenLevels(levels [][]uint) []uint {
	var ids []uint
	for _, level := range levels {
		ids = append(ids, level...)
	}
	return ids
}

// ============================================
// CRUD
// ============================================

func (s *folderService) GetFolder(ctx context.Context, db *gorm.DB, id uint) (*models.Folder, error) {
	db = db.WithContext(ctx)

	folder, err := s.folderRepo.FindByID(db, id)
	if err != nil {
		return nil, mapError(err)
	}

	tags, err := s.tagRepo.FindForEntity(db, models.TagModuleFolders, folder.ID)
	if err != nil {
		return nil, mapError(err)
	}
	folder.Tags = tags
	return folder, nil
}

func (s *folderService) CreateFolder(ctx context.Context, db *gorm.DB, parentID *uint, req *dto.CreateFolderRequest, actor *models.Actor) (*models.Folder, error) {
	db = db.WithContext(ctx)

	if parentID != nil {
		if _, err := s.folderRepo.FindByID(db, *parentID); err != nil {
			return nil, mapError(err)
		}
	}

	folder := &models.Folder{
		ParentID:    parentID,
		Name:        req.Name,
		IsPrivate:   req.IsPrivate,
		Description: req.Description,
		CreatedBy:   actor.JSON(),
	}
	if err := s.folderRepo.Create(db, folder); err != nil {
		return nil, mapError(err)
	}

	logger.CtxInfo(ctx, "folder created", "folder_id", folder.ID, "parent_id", parentID)
	return folder, nil
}

func (s *folderService) UpdateFolder(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateFolderRequest) (*models.Folder, error) {
	db = db.WithContext(ctx)

	folder, err := s.folderRepo.FindByID(db, id)
	if err != nil {
		return nil, mapError(err)
	}

	folder.Name = req.Name
	folder.Description = req.Description
	folder.IsPrivate = req.IsPrivate
	if err := s.folderRepo.Update(db, folder); err != nil {
		return nil, mapError(err)
	}
	return folder, nil
}

func (s *folderService) ListTrashed(ctx context.Context, db *gorm.DB) ([]models.Folder, error) {
	folders, err := s.folderRepo.FindTrashed(db.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return nonNilFolders(folders), nil
}

// ============================================
// КАСКАДНЫЕ ОПЕРАЦИИ
// ============================================

// DeleteFolder мягко удаляет папку, все поддерево и файлы в нем
func (s *folderService) DeleteFolder(ctx context.Context, db *gorm.DB, id uint) error {
	if _, err := s.folderRepo.FindByID(db.WithContext(ctx), id); err != nil {
		return mapError(err)
	}
	return s.softDelete(ctx, db, []uint{id})
}

func (s *folderService) MassDeleteFolders(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one unit to delete")
	}
	return s.softDelete(ctx, db, ids)
}

func (s *folderService) softDelete(ctx context.Context, db *gorm.DB, roots []uint) error {
	return withTransaction(ctx, db, func(tx *gorm.DB) error {
		levels, err := s.subtreeLevels(tx, roots, false)
		if err != nil {
			return err
		}
		ids := flattenLevels(levels)

		if err := s.folderRepo.SoftDeleteByIDs(tx, ids); err != nil {
			return mapError(err)
		}
		if err := s.fileRepo.SoftDeleteByFolderIDs(tx, ids); err != nil {
			return mapError(err)
		}

		logger.CtxInfo(ctx, "folders soft-deleted", "roots", roots, "count", len(ids))
		return nil
	})
}

// RestoreFolder восстанавливает папку, поддерево и файлы в нем
func (s *folderService) RestoreFolder(ctx context.Context, db *gorm.DB, id uint) error {
	if _, err := s.folderRepo.FindByIDWithTrashed(db.WithContext(ctx), id); err != nil {
		return mapError(err)
	}
	return s.restore(ctx, db, []uint{id})
}

func (s *folderService) MassRestoreFolders(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one folder to restore")
	}
	return s.restore(ctx, db, ids)
}

func (s *folderService) restore(ctx context.Context, db *gorm.DB, roots []uint) error {
	return withTransaction(ctx, db, func(tx *gorm.DB) error {
		levels, err := s.subtreeLevels(tx, roots, true)
		if err != nil {
			return err
		}
		ids := flattenLevels(levels)

		if err := s.folderRepo.RestoreByIDs(tx, ids); err != nil {
			return mapError(err)
		}
		if err := s.fileRepo.RestoreByFolderIDs(tx, ids); err != nil {
			return mapError(err)
		}

		logger.CtxInfo(ctx, "folders restored", "roots", roots, "count", len(ids))
		return nil
	})
}

// ForceDeleteFolder удаляет поддерево окончательно: сначала файлы
// (объекты и строки), затем папки уровнями, самые глубокие первыми.
func (s *folderService) ForceDeleteFolder(ctx context.Context, db *gorm.DB, id uint) error {
	if _, err := s.folderRepo.FindByIDWithTrashed(db.WithContext(ctx), id); err != nil {
		return mapError(err)
	}
	return s.forceDelete(ctx, db, []uint{id})
}

func (s *folderService) MassForceDeleteFolders(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one unit to delete")
	}
	return s.forceDelete(ctx, db, ids)
}

func (s *folderService) forceDelete(ctx context.Context, db *gorm.DB, roots []uint) error {
	return withTransaction(ctx, db, func(tx *gorm.DB) error {
		levels, err := s.subtreeLevels(tx, roots, true)
		if err != nil {
			return err
		}
		ids := flattenLevels(levels)

		files, err := s.fileRepo.FindByFolderIDs(tx, ids, true)
		if err != nil {
			return mapError(err)
		}
		fileIDs := make([]uint, 0, len(files))
		for i := range files {
			if err := s.fileStorage.Delete(ctx, tx, &files[i]); err != nil {
				return err
			}
			fileIDs = append(fileIDs, files[i].ID)
		}
		if err := s.tagRepo.DeleteAssociations(tx, models.TagModuleFiles, fileIDs); err != nil {
			return mapError(err)
		}
		if err := s.fileRepo.ForceDeleteByIDs(tx, fileIDs); err != nil {
			return mapError(err)
		}

		for depth := len(levels) - 1; depth >= 0; depth-- {
			if err := s.folderRepo.ForceDeleteByIDs(tx, levels[depth]); err != nil {
				return mapError(err)
			}
		}
		if err := s.tagRepo.DeleteAssociations(tx, models.TagModuleFolders, ids); err != nil {
			return mapError(err)
		}

		logger.CtxInfo(ctx, "folders force-deleted", "roots", roots, "folders", len(ids), "files", len(fileIDs))
		return nil
	})
}

func nonNilFolders(folders []models.Folder) []models.Folder {
	if folders == nil {
		return []models.Folder{}
	}
	return folders
}

func nonNilFiles(files []models.File) []models.File {
	if files == nil {
		return []models.File{}
	}
	return files
}
