package workers

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"filemanager/internal/logger"
	"filemanager/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type countingBackfill struct {
	calls     atomic.Int32
	batchSize atomic.Int32
}

func (b *countingBackfill) ResignStoredURLs(ctx context.Context, db *gorm.DB, batchSize int, dryRun bool) (*dto.BackfillReport, error) {
	b.calls.Add(1)
	b.batchSize.Store(int32(batchSize))
	return &dto.BackfillReport{Scanned: 1, Updated: 1}, nil
}

func TestURLRefreshWorker_RunsOnTicker(t *testing.T) {
	backfill := &countingBackfill{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewURLRefreshWorker(nil, backfill, 10*time.Millisecond, 50).Start(ctx)

	assert.Eventually(t, func() bool { return backfill.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(50), backfill.batchSize.Load())
}

func TestURLRefreshWorker_DisabledWithoutInterval(t *testing.T) {
	backfill := &countingBackfill{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewURLRefreshWorker(nil, backfill, 0, 50).Start(ctx)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, backfill.calls.Load())
}

func TestURLRefreshWorker_StopsOnCancel(t *testing.T) {
	backfill := &countingBackfill{}
	ctx, cancel := context.WithCancel(context.Background())

	NewURLRefreshWorker(nil, backfill, 10*time.Millisecond, 50).Start(ctx)
	assert.Eventually(t, func() bool { return backfill.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	stopped := backfill.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, backfill.calls.Load())
}

type reportBackfill struct {
	report dto.BackfillReport
}

func (b reportBackfill) ResignStoredURLs(ctx context.Context, db *gorm.DB, batchSize int, dryRun bool) (*dto.BackfillReport, error) {
	report := b.report
	return &report, nil
}

func TestURLRefreshWorker_LogLevelFollowsReport(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("test", &buf)
	t.Cleanup(func() { logger.Init("test") })

	NewURLRefreshWorker(nil, reportBackfill{dto.BackfillReport{Scanned: 3}}, time.Minute, 10).runOnce(context.Background())
	assert.Empty(t, buf.String(), "quiet run stays below warn")

	NewURLRefreshWorker(nil, reportBackfill{dto.BackfillReport{Scanned: 3, Updated: 1, Failed: 2}}, time.Minute, 10).runOnce(context.Background())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "failed=2")
}
