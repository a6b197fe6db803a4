package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/storage"
	"filemanager/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================
// FILE STORAGE SERVICE (объекты в бакетах)
// ============================================

type FileStorageService interface {
	// ObjectKey - новый непрозрачный ключ "<namespace>/<uuid>.<ext>"
	ObjectKey(filename, mime string) string
	// Upload пишет объект и возвращает sha256 содержимого
	Upload(ctx context.Context, visibility models.Visibility, key string, body io.Reader, mime string) (string, error)
	Open(ctx context.Context, file *models.File) (io.ReadCloser, error)
	MimeType(ctx context.Context, file *models.File) (string, error)
	// Delete удаляет объект (если есть) и привязки FileEntity
	Delete(ctx context.Context, db *gorm.DB, file *models.File) error
	RemoveObject(ctx context.Context, visibility models.Visibility, key string) error
}

type fileStorageService struct {
	disks     *storage.Disks
	fileRepo  repositories.FileRepository
	namespace string
}

func NewFileStorageService(disks *storage.Disks, fileRepo repositories.FileRepository, namespace string) FileStorageService {
	return &fileStorageService{
		disks:     disks,
		fileRepo:  fileRepo,
		namespace: strings.Trim(namespace, "/"),
	}
}

var mimeExtensions = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"video/mp4":       "mp4",
	"audio/mpeg":      "mp3",
}

// расширение из имени клиента попадает в ключ только в таком виде
var safeExtension = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

func (s *fileStorageService) ObjectKey(filename, mime string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if !safeExtension.MatchString(ext) {
		ext = mimeExtensions[mime]
	}
	if ext == "" {
		ext = "bin"
	}

	name := uuid.NewString() + "." + ext
	if s.namespace == "" {
		return name
	}
	return s.namespace + "/" + name
}

func (s *fileStorageService) Upload(ctx context.Context, visibility models.Visibility, key string, body io.Reader, mime string) (string, error) {
	disk := s.disks.For(visibility)
	hash := sha256.New()

	start := time.Now()
	err := disk.Put(ctx, key, io.TeeReader(body, hash), mime)
	logger.StorageLog("put", disk.Name(), key, time.Since(start), err)
	if err != nil {
		return "", apperrors.StorageError(err, "Failed to upload file")
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func (s *fileStorageService) Open(ctx context.Context, file *models.File) (io.ReadCloser, error) {
	disk := s.disks.For(file.Visibility)

	start := time.Now()
	rc, err := disk.Get(ctx, file.ObjectKey)
	logger.StorageLog("get", disk.Name(), file.ObjectKey, time.Since(start), err)
	if err != nil {
		return nil, mapStorageError(err, "Failed to read file")
	}
	return rc, nil
}

func (s *fileStorageService) MimeType(ctx context.Context, file *models.File) (string, error) {
	mime, err := s.disks.For(file.Visibility).MimeType(ctx, file.ObjectKey)
	if err != nil {
		return "", mapStorageError(err, "Failed to read file metadata")
	}
	return mime, nil
}

func (s *fileStorageService) Delete(ctx context.Context, db *gorm.DB, file *models.File) error {
	if file.ObjectKey != "" {
		disk := s.disks.For(file.Visibility)

		exists, err := disk.Exists(ctx, file.ObjectKey)
		if err != nil {
			return apperrors.StorageError(err, "Failed to check file in storage")
		}
		if exists {
			if err := s.RemoveObject(ctx, file.Visibility, file.ObjectKey); err != nil {
				return err
			}
		}
	}

	if err := s.fileRepo.DeleteEntitiesByFileIDs(db, []uint{file.ID}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *fileStorageService) RemoveObject(ctx context.Context, visibility models.Visibility, key string) error {
	disk := s.disks.For(visibility)

	start := time.Now()
	err := disk.Delete(ctx, key)
	logger.StorageLog("delete", disk.Name(), key, time.Since(start), err)
	if err != nil {
		return apperrors.StorageError(err, "Failed to delete file from storage")
	}
	return nil
}

func mapStorageError(err error, message string) error {
	if apperrors.Is(err, storage.ErrObjectNotFound) {
		return mapError(err)
	}
	return apperrors.StorageError(err, message)
}
