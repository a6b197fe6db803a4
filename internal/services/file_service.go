package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"strings"

	"filemanager/internal/imageprocessor"
	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/services/dto"
	"filemanager/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// mimeSniffLen - сколько байт смотрим для определения типа
	mimeSniffLen = 3072
	// headSniffLen - заголовок для размеров изображения
	headSniffLen = 64 << 10
)

// ============================================
// FILE SERVICE (жизненный цикл файлов)
// ============================================

type FileService interface {
	StoreOne(ctx context.Context, db *gorm.DB, upload dto.Upload, meta dto.UploadMeta) (*dto.StoredFile, error)
	StoreMany(ctx context.Context, db *gorm.DB, uploads []dto.Upload, meta dto.UploadMeta) (*dto.StoreManyResult, error)

	GetFile(ctx context.Context, db *gorm.DB, id uint) (*models.File, error)
	UpdateFile(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateFileRequest) (*models.File, error)
	GetURL(ctx context.Context, db *gorm.DB, id uint) (*dto.AccessURL, error)
	Download(ctx context.Context, db *gorm.DB, id uint) (*dto.Download, error)
	ListTrashed(ctx context.Context, db *gorm.DB) ([]models.File, error)

	DeleteFile(ctx context.Context, db *gorm.DB, id uint) error
	MassDeleteFiles(ctx context.Context, db *gorm.DB, ids []uint) error
	RestoreFile(ctx context.Context, db *gorm.DB, id uint) error
	MassRestoreFiles(ctx context.Context, db *gorm.DB, ids []uint) error
	ForceDeleteFile(ctx context.Context, db *gorm.DB, id uint) error
	MassForceDeleteFiles(ctx context.Context, db *gorm.DB, ids []uint) error
}

type fileService struct {
	fileRepo    repositories.FileRepository
	folderRepo  repositories.FolderRepository
	tagRepo     repositories.TagRepository
	fileStorage FileStorageService
	fileURL     FileURLService
}

func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	tagRepo repositories.TagRepository,
	fileStorage FileStorageService,
	fileURL FileURLService,
) FileService {
	return &fileService{
		fileRepo:    fileRepo,
		folderRepo:  folderRepo,
		tagRepo:     tagRepo,
		fileStorage: fileStorage,
		fileURL:     fileURL,
	}
}

// ============================================
// ЗАГРУЗКА
// ============================================

// StoreOne создает строку и объект в одной транзакции. Если транзакция
// падает после записи объекта, объект удаляется.
func (s *fileService) StoreOne(ctx context.Context, db *gorm.DB, upload dto.Upload, meta dto.UploadMeta) (*dto.StoredFile, error) {
	if meta.FolderID != nil {
		if _, err := s.folderRepo.FindByID(db.WithContext(ctx), *meta.FolderID); err != nil {
			return nil, mapError(err)
		}
	}

	visibility := meta.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	src, err := upload.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	var (
		file     *models.File
		uploaded string
	)

	err = withTransaction(ctx, db, func(tx *gorm.DB) error {
		body, mime, metaData, err := sniffContent(src, upload.ContentType)
		if err != nil {
			return apperrors.InternalError(err)
		}

		file = &models.File{
			FoldersID:    meta.FolderID,
			Title:        strings.TrimSuffix(upload.Filename, path.Ext(upload.Filename)),
			OriginalName: upload.Filename,
			Size:         upload.Size,
			Mime:         mime,
			Visibility:   visibility,
			IsEntity:     meta.IsEntity,
			MetaData:     metaData,
		}
		if err := s.fileRepo.Create(tx, file); err != nil {
			return mapError(err)
		}

		key := s.fileStorage.ObjectKey(upload.Filename, mime)
		// объект может частично записаться и при ошибке Put
		uploaded = key
		checksum, err := s.fileStorage.Upload(ctx, visibility, key, body, mime)
		if err != nil {
			return err
		}

		columns := map[string]interface{}{
			"object_key":      key,
			"checksum_sha256": checksum,
		}
		if err := s.fileRepo.UpdateColumns(tx, file, columns); err != nil {
			return mapError(err)
		}
		file.ObjectKey = key
		file.ChecksumSHA256 = checksum

		if meta.EntityType != "" {
			entity := &models.FileEntity{
				FilesID:    file.ID,
				EntityType: meta.EntityType,
				EntityID:   meta.EntityID,
			}
			if err := s.fileRepo.CreateEntity(tx, entity); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
	if err != nil {
		if uploaded != "" {
			if delErr := s.fileStorage.RemoveObject(context.WithoutCancel(ctx), visibility, uploaded); delErr != nil {
				logger.CtxWithError(ctx, "CRITICAL: failed to remove object after rollback", delErr, "key", uploaded)
			}
		}
		return nil, err
	}

	access, err := s.fileURL.Resolve(ctx, db, file)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "file stored", "file_id", file.ID, "visibility", visibility, "size", file.Size)

	return &dto.StoredFile{
		ID:         file.ID,
		Title:      file.Title,
		Size:       file.Size,
		Mime:       file.Mime,
		Visibility: file.Visibility,
		ObjectKey:  file.ObjectKey,
		Path:       access.URL,
		ExpiresAt:  access.ExpiresAt,
	}, nil
}

// StoreMany загружает файлы по одному; первая ошибка прерывает загрузку.
// Уже загруженные файлы остаются.
func (s *fileService) StoreMany(ctx context.Context, db *gorm.DB, uploads []dto.Upload, meta dto.UploadMeta) (*dto.StoreManyResult, error) {
	if len(uploads) == 0 {
		return nil, apperrors.FieldError("files", "at least one file is required")
	}

	result := &dto.StoreManyResult{Files: make([]dto.StoredFile, 0, len(uploads))}
	for _, upload := range uploads {
		stored, err := s.StoreOne(ctx, db, upload, meta)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, *stored)
	}
	result.Count = len(result.Files)
	return result, nil
}

// sniffContent читает заголовок содержимого. Тип клиента берется, если он
// конкретный, иначе определяется по байтам. Для изображений возвращает
// размеры для meta_data.
func sniffContent(src io.Reader, declared string) (io.Reader, string, datatypes.JSON, error) {
	head := make([]byte, headSniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", nil, err
	}
	head = head[:n]
	body := io.MultiReader(bytes.NewReader(head), src)

	mime := strings.TrimSpace(declared)
	if mime == "" || mime == "application/octet-stream" {
		sniff := head
		if len(sniff) > mimeSniffLen {
			sniff = sniff[:mimeSniffLen]
		}
		mime = mimetype.Detect(sniff).String()
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = mime[:i]
		}
	}

	var meta datatypes.JSON
	if imageprocessor.IsImage(mime) {
		if info, ok := imageprocessor.Inspect(head); ok {
			raw, err := json.Marshal(info)
			if err != nil {
				return nil, "", nil, err
			}
			meta = datatypes.JSON(raw)
		}
	}
	return body, mime, meta, nil
}

// ============================================
// ЧТЕНИЕ / ИЗМЕНЕНИЕ
// ============================================

func (s *fileService) GetFile(ctx context.Context, db *gorm.DB, id uint) (*models.File, error) {
	db = db.WithContext(ctx)

	file, err := s.fileRepo.FindByID(db, id)
	if err != nil {
		return nil, mapError(err)
	}
	tags, err := s.tagRepo.FindForEntity(db, models.TagModuleFiles, file.ID)
	if err != nil {
		return nil, mapError(err)
	}
	file.Tags = tags
	return file, nil
}

func (s *fileService) UpdateFile(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateFileRequest) (*models.File, error) {
	db = db.WithContext(ctx)

	file, err := s.fileRepo.FindByID(db, id)
	if err != nil {
		return nil, mapError(err)
	}

	columns := map[string]interface{}{
		"title":       req.Name,
		"source_text": req.SourceText,
	}
	if err := s.fileRepo.UpdateColumns(db, file, columns); err != nil {
		return nil, mapError(err)
	}
	file.Title = req.Name
	file.SourceText = req.SourceText
	return file, nil
}

func (s *fileService) GetURL(ctx context.Context, db *gorm.DB, id uint) (*dto.AccessURL, error) {
	file, err := s.fileRepo.FindByID(db.WithContext(ctx), id)
	if err != nil {
		return nil, mapError(err)
	}
	return s.fileURL.Resolve(ctx, db, file)
}

func (s *fileService) Download(ctx context.Context, db *gorm.DB, id uint) (*dto.Download, error) {
	file, err := s.fileRepo.FindByID(db.WithContext(ctx), id)
	if err != nil {
		return nil, mapError(err)
	}

	mime, err := s.fileStorage.MimeType(ctx, file)
	if err != nil {
		return nil, err
	}
	body, err := s.fileStorage.Open(ctx, file)
	if err != nil {
		return nil, err
	}

	filename := file.OriginalName
	if filename == "" {
		filename = path.Base(file.ObjectKey)
	}

	return &dto.Download{
		Body:     body,
		Mime:     mime,
		Filename: filename,
		Size:     file.Size,
	}, nil
}

func (s *fileService) ListTrashed(ctx context.Context, db *gorm.DB) ([]models.File, error) {
	files, err := s.fileRepo.FindTrashed(db.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return nonNilFiles(files), nil
}

// ============================================
// УДАЛЕНИЕ / ВОССТАНОВЛЕНИЕ
// ============================================

func (s *fileService) DeleteFile(ctx context.Context, db *gorm.DB, id uint) error {
	db = db.WithContext(ctx)
	if _, err := s.fileRepo.FindByID(db, id); err != nil {
		return mapError(err)
	}
	if err := s.fileRepo.SoftDeleteByIDs(db, []uint{id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *fileService) MassDeleteFiles(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one unit to delete")
	}
	if err := s.fileRepo.SoftDeleteByIDs(db.WithContext(ctx), dedupe(ids)); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *fileService) RestoreFile(ctx context.Context, db *gorm.DB, id uint) error {
	db = db.WithContext(ctx)
	if _, err := s.fileRepo.FindByIDWithTrashed(db, id); err != nil {
		return mapError(err)
	}
	if err := s.fileRepo.RestoreByIDs(db, []uint{id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *fileService) MassRestoreFiles(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one file to restore")
	}
	if err := s.fileRepo.RestoreByIDs(db.WithContext(ctx), dedupe(ids)); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *fileService) ForceDeleteFile(ctx context.Context, db *gorm.DB, id uint) error {
	if _, err := s.fileRepo.FindByIDWithTrashed(db.WithContext(ctx), id); err != nil {
		return mapError(err)
	}
	return s.forceDelete(ctx, db, []uint{id})
}

func (s *fileService) MassForceDeleteFiles(ctx context.Context, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return apperrors.EmptySelection("Please select at least one unit to delete")
	}
	return s.forceDelete(ctx, db, dedupe(ids))
}

// forceDelete: объект, привязки, теги, затем строка
func (s *fileService) forceDelete(ctx context.Context, db *gorm.DB, ids []uint) error {
	return withTransaction(ctx, db, func(tx *gorm.DB) error {
		files, err := s.fileRepo.FindByIDsWithTrashed(tx, ids)
		if err != nil {
			return mapError(err)
		}
		if len(files) == 0 {
			return nil
		}

		found := make([]uint, 0, len(files))
		for i := range files {
			if err := s.fileStorage.Delete(ctx, tx, &files[i]); err != nil {
				return err
			}
			found = append(found, files[i].ID)
		}

		if err := s.tagRepo.DeleteAssociations(tx, models.TagModuleFiles, found); err != nil {
			return mapError(err)
		}
		if err := s.fileRepo.ForceDeleteByIDs(tx, found); err != nil {
			return mapError(err)
		}

		logger.CtxInfo(ctx, "files force-deleted", "count", len(found))
		return nil
	})
}
