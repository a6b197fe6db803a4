package services

import (
	"context"
	"time"

	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/storage"
	"filemanager/internal/services/dto"
	"filemanager/pkg/apperrors"

	"gorm.io/gorm"
)

// ============================================
// FILE URL SERVICE (кэш подписанных ссылок)
// ============================================

type FileURLService interface {
	// Resolve возвращает ссылку доступа: публичную или кэшированную подписанную
	Resolve(ctx context.Context, db *gorm.DB, file *models.File) (*dto.AccessURL, error)
	// GenerateAndStore всегда подписывает заново и сохраняет в строку файла
	GenerateAndStore(ctx context.Context, db *gorm.DB, file *models.File) (*dto.AccessURL, error)
	// ResignURL подписывает заново ссылку приватного бакета.
	// Чужие ссылки возвращаются без изменений (changed == false).
	ResignURL(ctx context.Context, rawURL string) (*dto.AccessURL, bool, error)
}

type fileURLService struct {
	disks    *storage.Disks
	fileRepo repositories.FileRepository
	ttl      time.Duration
	clock    Clock
}

func NewFileURLService(disks *storage.Disks, fileRepo repositories.FileRepository, ttl time.Duration, clock Clock) FileURLService {
	if clock == nil {
		clock = SystemClock
	}
	return &fileURLService{
		disks:    disks,
		fileRepo: fileRepo,
		ttl:      ttl,
		clock:    clock,
	}
}

func (s *fileURLService) Resolve(ctx context.Context, db *gorm.DB, file *models.File) (*dto.AccessURL, error) {
	if file.IsPublic() {
		url := s.disks.Public.URL(file.ObjectKey)
		if file.Path != url {
			if err := s.fileRepo.UpdateColumns(db.WithContext(ctx), file, map[string]interface{}{"path": url}); err != nil {
				return nil, mapError(err)
			}
			file.Path = url
		}
		return &dto.AccessURL{URL: url}, nil
	}

	// кэш валиден строго до expires_at
	if file.SignedURL != nil && *file.SignedURL != "" && file.SignedURLExpiresAt != nil &&
		s.clock.Now().Before(*file.SignedURLExpiresAt) {
		expires := *file.SignedURLExpiresAt
		logger.CtxDebug(ctx, "signed url cache hit", "file_id", file.ID, "expires_at", expires)
		return &dto.AccessURL{URL: *file.SignedURL, ExpiresAt: &expires}, nil
	}

	return s.GenerateAndStore(ctx, db, file)
}

func (s *fileURLService) GenerateAndStore(ctx context.Context, db *gorm.DB, file *models.File) (*dto.AccessURL, error) {
	if file.IsPublic() {
		return s.Resolve(ctx, db, file)
	}

	url, err := s.disks.Private.PresignGet(ctx, file.ObjectKey, s.ttl)
	if err != nil {
		logger.CtxWithError(ctx, "failed to sign file url", err, "file_id", file.ID)
		return nil, apperrors.StorageError(err, "Failed to generate file URL")
	}
	expires := s.clock.Now().Add(s.ttl)

	columns := map[string]interface{}{
		"path":                  url,
		"signed_url":            url,
		"signed_url_expires_at": expires,
	}
	if err := s.fileRepo.UpdateColumns(db.WithContext(ctx), file, columns); err != nil {
		return nil, mapError(err)
	}

	file.Path = url
	file.SignedURL = &url
	file.SignedURLExpiresAt = &expires

	out := expires
	return &dto.AccessURL{URL: url, ExpiresAt: &out}, nil
}

func (s *fileURLService) ResignURL(ctx context.Context, rawURL string) (*dto.AccessURL, bool, error) {
	key, ok := s.disks.Private.KeyFromURL(rawURL)
	if !ok {
		return &dto.AccessURL{URL: rawURL}, false, nil
	}

	url, err := s.disks.Private.PresignGet(ctx, key, s.ttl)
	if err != nil {
		return nil, false, apperrors.StorageError(err, "Failed to generate file URL")
	}
	expires := s.clock.Now().Add(s.ttl)
	return &dto.AccessURL{URL: url, ExpiresAt: &expires}, true, nil
}
