package workers

import (
	"context"
	"time"

	"filemanager/internal/logger"
	"filemanager/internal/services"

	"gorm.io/gorm"
)

// URLRefreshWorker периодически пересоздает подписанные ссылки приватных
// файлов, чтобы ссылки в files.path не протухали между запросами.
type URLRefreshWorker struct {
	db        *gorm.DB
	backfill  services.BackfillService
	interval  time.Duration
	batchSize int
}

func NewURLRefreshWorker(db *gorm.DB, backfill services.BackfillService, interval time.Duration, batchSize int) *URLRefreshWorker {
	return &URLRefreshWorker{
		db:        db,
		backfill:  backfill,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start запускает фоновый цикл; interval <= 0 отключает воркер
func (w *URLRefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Info("URL refresh worker disabled")
		return
	}
	go w.run(ctx)
}

func (w *URLRefreshWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("URL refresh worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *URLRefreshWorker) runOnce(ctx context.Context) {
	report, err := w.backfill.ResignStoredURLs(ctx, w.db, w.batchSize, false)
	if err != nil {
		logger.Error("URL refresh failed", "error", err)
		return
	}

	fields := []any{
		"scanned", report.Scanned,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	}
	switch {
	case report.Failed > 0:
		logger.Warn("URL refresh finished with failures", fields...)
	case report.Updated > 0:
		logger.Info("URL refresh finished", fields...)
	default:
		logger.Debug("URL refresh found nothing to update", fields...)
	}
}
