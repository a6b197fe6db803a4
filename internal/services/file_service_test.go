package services

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"filemanager/internal/models"
	"filemanager/internal/services/dto"
	"filemanager/internal/storage"
	"filemanager/internal/testutil"
	"filemanager/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOneRollsBackOnStorageFailure(t *testing.T) {
	public := storage.NewMemoryStorage("public", "https://cdn.example.com", "public-bucket")
	private := storage.NewMemoryStorage("private", "https://cdn.example.com", "private-bucket")
	env := newTestEnvWithDisks(t, &storage.Disks{
		Public:  public,
		Private: failingPutStorage{Storage: private},
	})

	_, err := env.files.StoreOne(env.ctx, env.db, textUpload("a.txt", "hello"), privateMeta(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errPutFailed)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode)

	assert.Zero(t, testutil.CountRows(t, env.db, &models.File{}), "no row survives the rollback")
	assert.Zero(t, private.Len(), "uploaded object is removed")
}

func TestStoreOneFailsWhenSigningFails(t *testing.T) {
	public := storage.NewMemoryStorage("public", "", "")
	private := storage.NewMemoryStorage("private", "", "")
	env := newTestEnvWithDisks(t, &storage.Disks{
		Public:  public,
		Private: failingSignStorage{Storage: private},
	})

	_, err := env.files.StoreOne(env.ctx, env.db, textUpload("a.txt", "hello"), privateMeta(nil))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeStorageError, appErr.Code)
}

func TestStoreDownloadAndForceDelete(t *testing.T) {
	env := newTestEnv(t)
	folder := testutil.CreateFolder(t, env.db, "Inbox", nil)

	stored, err := env.files.StoreOne(env.ctx, env.db, textUpload("Notes.TXT", "line one"), privateMeta(folder))
	require.NoError(t, err)
	assert.Equal(t, "Notes", stored.Title)
	assert.Equal(t, "text/plain", stored.Mime)
	assert.Equal(t, models.VisibilityPrivate, stored.Visibility)
	assert.True(t, strings.HasSuffix(stored.ObjectKey, ".txt"))
	assert.Contains(t, stored.Path, "X-Signature=")
	require.NotNil(t, stored.ExpiresAt)
	assert.Equal(t, env.clock.Now().Add(24*time.Hour), *stored.ExpiresAt)

	file, err := env.fileRepo.FindByID(env.db, stored.ID)
	require.NoError(t, err)
	assert.Len(t, file.ChecksumSHA256, 64)
	assert.Equal(t, "Notes.TXT", file.OriginalName)

	download, err := env.files.Download(env.ctx, env.db, stored.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(download.Body)
	require.NoError(t, download.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "line one", string(body))
	assert.Equal(t, "text/plain", download.Mime)
	assert.Equal(t, "Notes.TXT", download.Filename)

	require.NoError(t, env.files.ForceDeleteFile(env.ctx, env.db, stored.ID))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.File{}))
	assert.Zero(t, env.disks.Private.(*storage.MemoryStorage).Len())

	_, err = env.files.Download(env.ctx, env.db, stored.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestForceDeleteKeepsRowsWhenObjectDeleteFails(t *testing.T) {
	public := storage.NewMemoryStorage("public", "https://cdn.example.com", "public-bucket")
	private := storage.NewMemoryStorage("private", "https://cdn.example.com", "private-bucket")
	env := newTestEnvWithDisks(t, &storage.Disks{
		Public:  public,
		Private: failingDeleteStorage{Storage: private},
	})
	folder := testutil.CreateFolder(t, env.db, "Contracts", nil)

	stored, err := env.files.StoreOne(env.ctx, env.db, textUpload("nda.txt", "secret"), privateMeta(folder))
	require.NoError(t, err)

	err = env.files.ForceDeleteFile(env.ctx, env.db, stored.ID)
	assert.ErrorIs(t, err, errDeleteFailed)

	err = env.folders.ForceDeleteFolder(env.ctx, env.db, folder.ID)
	assert.ErrorIs(t, err, errDeleteFailed)

	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.File{}), "file row survives the rollback")
	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.Folder{}), "folder row survives the rollback")
	assert.Equal(t, 1, private.Len(), "object is still stored")
}

func TestStorePublicFile(t *testing.T) {
	env := newTestEnv(t)

	meta := dto.UploadMeta{Visibility: models.VisibilityPublic}
	stored, err := env.files.StoreOne(env.ctx, env.db, textUpload("logo", "\x89PNG\r\n\x1a\n0000"), meta)
	require.NoError(t, err)

	assert.Nil(t, stored.ExpiresAt)
	assert.Equal(t, "https://cdn.example.com/public-bucket/"+stored.ObjectKey, stored.Path)
	assert.Equal(t, 1, env.disks.Public.(*storage.MemoryStorage).Len())
	assert.Zero(t, env.disks.Private.(*storage.MemoryStorage).Len())
}

func TestStoreSniffsMime(t *testing.T) {
	env := newTestEnv(t)

	upload := textUpload("scan", "%PDF-1.7\nbody")
	upload.ContentType = "application/octet-stream"

	stored, err := env.files.StoreOne(env.ctx, env.db, upload, privateMeta(nil))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", stored.Mime)
	assert.True(t, strings.HasSuffix(stored.ObjectKey, ".pdf"), "extension falls back to mime")

	download, err := env.files.Download(env.ctx, env.db, stored.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7\nbody", string(body), "sniffed bytes are not lost")
}

func TestStoreRecordsImageSize(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 7))))

	upload := textUpload("pixel.png", buf.String())
	upload.ContentType = ""

	stored, err := env.files.StoreOne(env.ctx, env.db, upload, privateMeta(nil))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.Mime)

	file, err := env.fileRepo.FindByID(env.db, stored.ID)
	require.NoError(t, err)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(file.MetaData, &meta))
	assert.Equal(t, float64(12), meta["width"])
	assert.Equal(t, float64(7), meta["height"])
	assert.Equal(t, "png", meta["format"])
}

func TestStoreSkipsMetaForNonImages(t *testing.T) {
	env := newTestEnv(t)

	stored, err := env.files.StoreOne(env.ctx, env.db, textUpload("a.txt", "hello"), privateMeta(nil))
	require.NoError(t, err)

	file, err := env.fileRepo.FindByID(env.db, stored.ID)
	require.NoError(t, err)
	assert.Empty(t, file.MetaData)
}

func TestStoreEntityFile(t *testing.T) {
	env := newTestEnv(t)

	meta := dto.UploadMeta{
		EntityType: "task",
		EntityID:   "15",
		IsEntity:   true,
		Visibility: models.VisibilityPrivate,
	}
	stored, err := env.files.StoreOne(env.ctx, env.db, textUpload("report.txt", "x"), meta)
	require.NoError(t, err)

	entities, err := env.fileRepo.FindEntities(env.db, stored.ID)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "task", entities[0].EntityType)
	assert.Equal(t, "15", entities[0].EntityID)

	files, err := env.fileRepo.FindInFolder(env.db, nil)
	require.NoError(t, err)
	assert.Empty(t, files, "entity files are hidden from browsing")
}

func TestStoreIntoMissingFolder(t *testing.T) {
	env := newTestEnv(t)

	missing := uint(12)
	_, err := env.files.StoreOne(env.ctx, env.db, textUpload("a.txt", "a"), dto.UploadMeta{FolderID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrFolderNotFound)
	assert.Zero(t, env.disks.Private.(*storage.MemoryStorage).Len())
}

func TestStoreMany(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.files.StoreMany(env.ctx, env.db, []dto.Upload{
		textUpload("one.txt", "1"),
		textUpload("two.txt", "2"),
	}, privateMeta(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "one", result.Files[0].Title)
	assert.Equal(t, "two", result.Files[1].Title)

	_, err = env.files.StoreMany(env.ctx, env.db, nil, privateMeta(nil))
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPCode)
}

func TestUpdateFile(t *testing.T) {
	env := newTestEnv(t)
	file := testutil.CreateFile(t, env.db, "draft.txt", nil, models.VisibilityPrivate)

	text := "extracted text"
	updated, err := env.files.UpdateFile(env.ctx, env.db, file.ID, &dto.UpdateFileRequest{Name: "Final", SourceText: &text})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)

	reloaded, err := env.files.GetFile(env.ctx, env.db, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", reloaded.Title)
	require.NotNil(t, reloaded.SourceText)
	assert.Equal(t, text, *reloaded.SourceText)

	_, err = env.files.UpdateFile(env.ctx, env.db, 999, &dto.UpdateFileRequest{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestFileTrashLifecycle(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateFile(t, env.db, "a.txt", nil, models.VisibilityPrivate)
	b := testutil.CreateFile(t, env.db, "b.txt", nil, models.VisibilityPrivate)

	require.NoError(t, env.files.DeleteFile(env.ctx, env.db, a.ID))
	assert.ErrorIs(t, env.files.DeleteFile(env.ctx, env.db, a.ID), apperrors.ErrFileNotFound)

	trashed, err := env.files.ListTrashed(env.ctx, env.db)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, a.ID, trashed[0].ID)

	require.NoError(t, env.files.RestoreFile(env.ctx, env.db, a.ID))
	_, err = env.files.GetFile(env.ctx, env.db, a.ID)
	require.NoError(t, err)

	require.NoError(t, env.files.MassDeleteFiles(env.ctx, env.db, []uint{a.ID, b.ID, 500}))
	trashed, err = env.files.ListTrashed(env.ctx, env.db)
	require.NoError(t, err)
	assert.Len(t, trashed, 2)

	require.NoError(t, env.files.MassRestoreFiles(env.ctx, env.db, []uint{b.ID}))
	require.NoError(t, env.files.MassForceDeleteFiles(env.ctx, env.db, []uint{a.ID, b.ID, 500}))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.File{}))

	for _, err := range []error{
		env.files.MassDeleteFiles(env.ctx, env.db, nil),
		env.files.MassRestoreFiles(env.ctx, env.db, nil),
		env.files.MassForceDeleteFiles(env.ctx, env.db, []uint{}),
	} {
		assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
	}
}

func TestDownloadMissingObject(t *testing.T) {
	env := newTestEnv(t)
	file := testutil.CreateFile(t, env.db, "ghost.txt", nil, models.VisibilityPrivate)

	_, err := env.files.Download(env.ctx, env.db, file.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
}

func TestObjectKey(t *testing.T) {
	svc := NewFileStorageService(nil, nil, "/FileManager/files/")

	cases := []struct {
		filename, mime, ext string
	}{
		{"photo.JPEG", "image/jpeg", ".jpeg"},
		{"clip", "video/mp4", ".mp4"},
		{"song", "audio/mpeg", ".mp3"},
		{"blob", "application/x-unknown", ".bin"},
		{"scan.p df", "application/pdf", ".pdf"},
		{"notes.t\\xt", "text/plain", ".bin"},
		{"ctrl.ex\x01e", "", ".bin"},
		{"archive.averyverylongext", "", ".bin"},
	}
	for _, tc := range cases {
		key := svc.ObjectKey(tc.filename, tc.mime)
		assert.True(t, strings.HasPrefix(key, "FileManager/files/"), key)
		assert.True(t, strings.HasSuffix(key, tc.ext), key)
	}

	for _, filename := range []string{"a b.p df", "x.t\\xt", "y.\x7f"} {
		key := svc.ObjectKey(filename, "")
		name := strings.TrimPrefix(key, "FileManager/files/")
		assert.NotContains(t, name, " ", key)
		assert.NotContains(t, name, "\\", key)
		assert.NotContains(t, name, "/", key)
	}

	assert.NotEqual(t, svc.ObjectKey("a.txt", ""), svc.ObjectKey("a.txt", ""), "keys are unique")
}
