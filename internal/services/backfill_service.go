package services

import (
	"context"

	"filemanager/internal/logger"
	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/services/dto"

	"gorm.io/gorm"
)

const backfillJob = "resign_file_urls"

// BackfillService пересоздает подписанные ссылки, сохраненные в files.path.
// Ссылки, не принадлежащие приватному бакету, не трогает.
type BackfillService interface {
	ResignStoredURLs(ctx context.Context, db *gorm.DB, batchSize int, dryRun bool) (*dto.BackfillReport, error)
}

type backfillService struct {
	fileRepo repositories.FileRepository
	fileURL  FileURLService
}

func NewBackfillService(fileRepo repositories.FileRepository, fileURL FileURLService) BackfillService {
	return &backfillService{fileRepo: fileRepo, fileURL: fileURL}
}

func (s *backfillService) ResignStoredURLs(ctx context.Context, db *gorm.DB, batchSize int, dryRun bool) (*dto.BackfillReport, error) {
	if batchSize <= 0 {
		batchSize = 200
	}
	db = db.WithContext(ctx)
	report := &dto.BackfillReport{DryRun: dryRun}

	err := s.fileRepo.FindWithPathInBatches(db, batchSize, func(batch []models.File) error {
		for i := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			file := &batch[i]
			report.Scanned++

			access, changed, err := s.fileURL.ResignURL(ctx, file.Path)
			if err != nil {
				report.Failed++
				logger.JobLog(backfillJob, "resign", err, "file_id", file.ID)
				continue
			}
			if !changed {
				report.Skipped++
				continue
			}
			if dryRun {
				report.Updated++
				continue
			}

			columns := map[string]interface{}{
				"path":                  access.URL,
				"signed_url":            access.URL,
				"signed_url_expires_at": access.ExpiresAt,
			}
			if err := s.fileRepo.UpdateColumns(db, file, columns); err != nil {
				report.Failed++
				logger.JobLog(backfillJob, "update", err, "file_id", file.ID)
				continue
			}
			report.Updated++
		}
		return nil
	})
	if err != nil {
		logger.JobLog(backfillJob, "scan", err, "scanned", report.Scanned)
		return report, mapError(err)
	}

	logger.JobLog(backfillJob, "done", nil,
		"scanned", report.Scanned,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"dry_run", dryRun,
	)
	return report, nil
}
