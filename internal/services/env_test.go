package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"filemanager/internal/models"
	"filemanager/internal/repositories"
	"filemanager/internal/services/dto"
	"filemanager/internal/storage"
	"filemanager/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeClock - управляемое время для кэша ссылок
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	disks *storage.Disks
	clock *fakeClock

	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	tagRepo    repositories.TagRepository
	taskRepo   repositories.TaskRepository

	fileStorage FileStorageService
	fileURL     FileURLService
	folders     FolderService
	files       FileService
	tags        TagService
	backfill    BackfillService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	disks, err := storage.NewDisks(storage.DisksConfig{
		Type:           "memory",
		PublicEndpoint: "https://cdn.example.com",
		PublicBucket:   "public-bucket",
		PrivateBucket:  "private-bucket",
	})
	require.NoError(t, err)

	return newTestEnvWithDisks(t, disks)
}

func newTestEnvWithDisks(t *testing.T, disks *storage.Disks) *testEnv {
	t.Helper()

	env := &testEnv{
		ctx:        context.Background(),
		db:         testutil.NewTestDB(t),
		disks:      disks,
		clock:      &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		folderRepo: repositories.NewFolderRepository(),
		fileRepo:   repositories.NewFileRepository(),
		tagRepo:    repositories.NewTagRepository(),
		taskRepo:   repositories.NewTaskRepository(),
	}

	env.fileStorage = NewFileStorageService(disks, env.fileRepo, "FileManager/files")
	env.fileURL = NewFileURLService(disks, env.fileRepo, 24*time.Hour, env.clock)
	env.folders = NewFolderService(env.folderRepo, env.fileRepo, env.tagRepo, env.fileStorage, 3)
	env.files = NewFileService(env.fileRepo, env.folderRepo, env.tagRepo, env.fileStorage, env.fileURL)
	env.tags = NewTagService(env.tagRepo, env.taskRepo, env.fileRepo, env.folderRepo, env.clock)
	env.backfill = NewBackfillService(env.fileRepo, env.fileURL)
	return env
}

func textUpload(name, body string) dto.Upload {
	return dto.Upload{
		Filename:    name,
		Size:        int64(len(body)),
		ContentType: "text/plain",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func privateMeta(folder *models.Folder) dto.UploadMeta {
	meta := dto.UploadMeta{Visibility: models.VisibilityPrivate}
	if folder != nil {
		id := folder.ID
		meta.FolderID = &id
	}
	return meta
}

// failingPutStorage принимает объект, а затем возвращает ошибку,
// как хранилище, оборвавшее соединение после записи.
type failingPutStorage struct {
	storage.Storage
}

var errPutFailed = errors.New("connection reset")

func (s failingPutStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := s.Storage.Put(ctx, key, r, contentType); err != nil {
		return err
	}
	return errPutFailed
}

// failingSignStorage не умеет подписывать ссылки
type failingSignStorage struct {
	storage.Storage
}

func (s failingSignStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", errors.New("signer unavailable")
}

// failingDeleteStorage не может удалить объект
type failingDeleteStorage struct {
	storage.Storage
}

var errDeleteFailed = errors.New("storage unreachable")

func (s failingDeleteStorage) Delete(ctx context.Context, key string) error {
	return errDeleteFailed
}
