package services

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"filemanager/internal/models"
	"filemanager/internal/services/dto"
	"filemanager/internal/storage"
	"filemanager/internal/testutil"
	"filemanager/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllFolderIDs(t *testing.T) {
	env := newTestEnv(t)

	a := testutil.CreateFolder(t, env.db, "A", nil)
	b := testutil.CreateFolder(t, env.db, "B", a)
	c := testutil.CreateFolder(t, env.db, "C", a)
	d := testutil.CreateFolder(t, env.db, "D", b)
	other := testutil.CreateFolder(t, env.db, "Other", nil)

	ids, err := env.folders.GetAllFolderIDs(env.ctx, env.db, a.ID, false)
	require.NoError(t, err)
	require.Len(t, ids, 4)
	assert.Equal(t, a.ID, ids[0], "root goes first")
	assert.ElementsMatch(t, []uint{a.ID, b.ID, c.ID, d.ID}, ids)
	assert.NotContains(t, ids, other.ID)

	t.Run("leaf", func(t *testing.T) {
		ids, err := env.folders.GetAllFolderIDs(env.ctx, env.db, d.ID, false)
		require.NoError(t, err)
		assert.Equal(t, []uint{d.ID}, ids)
	})

	t.Run("trashed descendants", func(t *testing.T) {
		require.NoError(t, env.db.Delete(&models.Folder{}, b.ID).Error)

		ids, err := env.folders.GetAllFolderIDs(env.ctx, env.db, a.ID, false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{a.ID, c.ID}, ids)

		ids, err = env.folders.GetAllFolderIDs(env.ctx, env.db, a.ID, true)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{a.ID, b.ID, c.ID, d.ID}, ids)
	})
}

func TestSubtreeLevels(t *testing.T) {
	env := newTestEnv(t)
	svc := env.folders.(*folderService)

	chain := testutil.CreateChain(t, env.db, "L0", "L1", "L2", "L3", "L4")
	ids := func(from ...int) []uint {
		out := make([]uint, 0, len(from))
		for _, i := range from {
			out = append(out, chain[i].ID)
		}
		return out
	}

	levels, err := svc.subtreeLevels(env.db, ids(0), false)
	require.NoError(t, err)
	assert.Equal(t, [][]uint{ids(0), ids(1), ids(2), ids(3), ids(4)}, levels)

	// корень, лежащий внутри другого корня, получает свою настоящую глубину
	levels, err = svc.subtreeLevels(env.db, ids(3, 0), false)
	require.NoError(t, err)
	assert.Equal(t, [][]uint{ids(0), ids(1), ids(2), ids(3), ids(4)}, levels)

	levels, err = svc.subtreeLevels(env.db, nil, false)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestBreadcrumbsWindow(t *testing.T) {
	env := newTestEnv(t)

	chain := testutil.CreateChain(t, env.db, "Root", "A", "B", "C", "D")
	testutil.CreateFile(t, env.db, "root.txt", chain[0], models.VisibilityPrivate)
	testutil.CreateFile(t, env.db, "b.txt", chain[2], models.VisibilityPrivate)
	testutil.CreateFile(t, env.db, "d.txt", chain[4], models.VisibilityPrivate)

	crumbs, err := env.folders.Breadcrumbs(env.ctx, env.db, chain[4], 3)
	require.NoError(t, err)
	require.Len(t, crumbs, 5)

	wantHidden := []bool{true, true, false, false, false}
	for i, crumb := range crumbs {
		assert.Equal(t, chain[i].ID, crumb.ID, "crumb %d", i)
		assert.Equal(t, wantHidden[i], crumb.Hidden, "crumb %d hidden", i)
		assert.Equal(t, i == 4, crumb.IsCurrent, "crumb %d current", i)
		assert.NotNil(t, crumb.Files)
	}

	assert.Empty(t, crumbs[0].Files, "hidden crumbs carry no files")
	require.Len(t, crumbs[2].Files, 1)
	assert.Equal(t, "b.txt", crumbs[2].Files[0].Title)
	assert.Empty(t, crumbs[3].Files)
	assert.Empty(t, crumbs[4].Files, "current folder files are listed separately")

	t.Run("shallower than window", func(t *testing.T) {
		crumbs, err := env.folders.Breadcrumbs(env.ctx, env.db, chain[1], 3)
		require.NoError(t, err)
		require.Len(t, crumbs, 2)
		assert.False(t, crumbs[0].Hidden)
		assert.Len(t, crumbs[0].Files, 1)
		assert.True(t, crumbs[1].IsCurrent)
	})

	t.Run("zero uses default", func(t *testing.T) {
		crumbs, err := env.folders.Breadcrumbs(env.ctx, env.db, chain[4], 0)
		require.NoError(t, err)
		assert.True(t, crumbs[1].Hidden)
		assert.False(t, crumbs[2].Hidden)
	})
}

func TestClampLevels(t *testing.T) {
	svc := &folderService{defaultMaxLevels: 3}

	assert.Equal(t, 3, svc.clampLevels(0))
	assert.Equal(t, 1, svc.clampLevels(-4))
	assert.Equal(t, 7, svc.clampLevels(7))
	assert.Equal(t, 10, svc.clampLevels(100))
}

func TestFolderCycleTerminates(t *testing.T) {
	env := newTestEnv(t)

	a := testutil.CreateFolder(t, env.db, "A", nil)
	b := testutil.CreateFolder(t, env.db, "B", a)
	// испорченные данные: A -> B -> A
	require.NoError(t, env.db.Model(&models.Folder{}).Where("id = ?", a.ID).Update("parent_id", b.ID).Error)

	current, err := env.folderRepo.FindByID(env.db, a.ID)
	require.NoError(t, err)

	crumbs, err := env.folders.Breadcrumbs(env.ctx, env.db, current, 3)
	require.NoError(t, err)
	assert.Len(t, crumbs, 2)

	ids, err := env.folders.GetAllFolderIDs(env.ctx, env.db, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, ids)

	require.NoError(t, env.folders.ForceDeleteFolder(env.ctx, env.db, a.ID))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.Folder{}))
}

func TestBrowseRoot(t *testing.T) {
	env := newTestEnv(t)

	testutil.CreateFolder(t, env.db, "zeta", nil)
	alpha := testutil.CreateFolder(t, env.db, "alpha", nil)
	testutil.CreateFolder(t, env.db, "nested", alpha)
	first := testutil.CreateFile(t, env.db, "first.txt", nil, models.VisibilityPrivate)
	second := testutil.CreateFile(t, env.db, "second.txt", nil, models.VisibilityPrivate)
	entity := testutil.CreateFile(t, env.db, "avatar.png", nil, models.VisibilityPublic)
	require.NoError(t, env.db.Model(entity).Update("is_entity", true).Error)

	result, err := env.folders.Browse(env.ctx, env.db, nil, 0)
	require.NoError(t, err)

	assert.Nil(t, result.Folder)
	assert.Empty(t, result.Breadcrumbs)
	assert.NotNil(t, result.Breadcrumbs)
	require.Len(t, result.Folders, 2)
	assert.Equal(t, "alpha", result.Folders[0].Name)
	assert.Equal(t, "zeta", result.Folders[1].Name)
	require.Len(t, result.Files, 2, "entity files stay out of listings")
	assert.Equal(t, second.ID, result.Files[0].ID, "newest first")
	assert.Equal(t, first.ID, result.Files[1].ID)
}

func TestBrowseMissingFolder(t *testing.T) {
	env := newTestEnv(t)

	missing := uint(404)
	_, err := env.folders.Browse(env.ctx, env.db, &missing, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFolderNotFound)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.StatusNotFoundSoft, appErr.HTTPCode)
}

func TestDocsReportScenario(t *testing.T) {
	env := newTestEnv(t)

	docs, err := env.folders.CreateFolder(env.ctx, env.db, nil, &dto.CreateFolderRequest{Name: "Docs"}, &models.Actor{ID: 7, Type: "jwt"})
	require.NoError(t, err)
	year, err := env.folders.CreateFolder(env.ctx, env.db, &docs.ID, &dto.CreateFolderRequest{Name: "2024"}, &models.Actor{ID: 7, Type: "jwt"})
	require.NoError(t, err)

	pdf := dto.Upload{
		Filename: "report.pdf",
		Size:     16,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("%PDF-1.4\n%EOF\n")), nil
		},
	}
	stored, err := env.files.StoreOne(env.ctx, env.db, pdf, privateMeta(year))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", stored.Mime)
	assert.Equal(t, "report", stored.Title)
	assert.True(t, strings.HasPrefix(stored.ObjectKey, "FileManager/files/"))
	assert.True(t, strings.HasSuffix(stored.ObjectKey, ".pdf"))
	require.NotNil(t, stored.ExpiresAt)

	result, err := env.folders.Browse(env.ctx, env.db, &year.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, result.Folder)
	assert.Equal(t, "2024", result.Folder.Name)
	require.Len(t, result.Breadcrumbs, 2)
	assert.Equal(t, "Docs", result.Breadcrumbs[0].Name)
	assert.True(t, result.Breadcrumbs[1].IsCurrent)
	require.Len(t, result.Files, 1)
	assert.Equal(t, stored.ID, result.Files[0].ID)

	// мягкое удаление каскадом
	require.NoError(t, env.folders.DeleteFolder(env.ctx, env.db, docs.ID))

	root, err := env.folders.Browse(env.ctx, env.db, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, root.Folders)

	_, err = env.files.GetFile(env.ctx, env.db, stored.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	trashed, err := env.folders.ListTrashed(env.ctx, env.db)
	require.NoError(t, err)
	assert.Len(t, trashed, 2)

	// восстановление возвращает поддерево и файлы
	require.NoError(t, env.folders.RestoreFolder(env.ctx, env.db, docs.ID))

	result, err = env.folders.Browse(env.ctx, env.db, &year.ID, 3)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	// окончательное удаление убирает и объект
	private := env.disks.Private.(*storage.MemoryStorage)
	require.Equal(t, 1, private.Len())
	require.NoError(t, env.folders.ForceDeleteFolder(env.ctx, env.db, docs.ID))

	assert.Zero(t, private.Len())
	assert.Zero(t, testutil.CountRows(t, env.db, &models.Folder{}))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.File{}))
}

func TestForceDeleteDeepTree(t *testing.T) {
	env := newTestEnv(t)

	chain := testutil.CreateChain(t, env.db, "L0", "L1", "L2", "L3", "L4")
	for _, folder := range chain {
		_, err := env.files.StoreOne(env.ctx, env.db, textUpload(folder.Name+".txt", "content of "+folder.Name), privateMeta(folder))
		require.NoError(t, err)
	}
	entity := &models.FileEntity{FilesID: 1, EntityType: "task", EntityID: "42"}
	require.NoError(t, env.fileRepo.CreateEntity(env.db, entity))

	_, err := env.tags.UpdateTags(env.ctx, env.db, "folders", chain[4].ID, &dto.UpdateTagsRequest{
		TagsNew: []dto.NewTag{{Name: "deep"}},
	})
	require.NoError(t, err)

	// часть поддерева уже в корзине
	require.NoError(t, env.folders.DeleteFolder(env.ctx, env.db, chain[2].ID))

	require.NoError(t, env.folders.ForceDeleteFolder(env.ctx, env.db, chain[0].ID))

	assert.Zero(t, testutil.CountRows(t, env.db, &models.Folder{}))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.File{}))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.FileEntity{}))
	assert.Zero(t, testutil.CountRows(t, env.db, &models.TagAssociation{}))
	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.Tag{}), "tags themselves survive")
	assert.Zero(t, env.disks.Private.(*storage.MemoryStorage).Len())
}

func TestMassFolderOperations(t *testing.T) {
	env := newTestEnv(t)

	a := testutil.CreateFolder(t, env.db, "A", nil)
	b := testutil.CreateFolder(t, env.db, "B", nil)
	child := testutil.CreateFolder(t, env.db, "child", a)
	keep := testutil.CreateFolder(t, env.db, "keep", nil)

	t.Run("empty selection", func(t *testing.T) {
		for name, call := range map[string]func() error{
			"delete":       func() error { return env.folders.MassDeleteFolders(env.ctx, env.db, nil) },
			"restore":      func() error { return env.folders.MassRestoreFolders(env.ctx, env.db, []uint{}) },
			"force delete": func() error { return env.folders.MassForceDeleteFolders(env.ctx, env.db, nil) },
		} {
			err := call()
			require.Error(t, err, name)
			assert.ErrorIs(t, err, apperrors.ErrEmptySelection, name)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok, name)
			assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPCode, name)
		}
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		require.NoError(t, env.folders.MassDeleteFolders(env.ctx, env.db, []uint{a.ID, b.ID, 9999}))

		root, err := env.folders.Browse(env.ctx, env.db, nil, 3)
		require.NoError(t, err)
		require.Len(t, root.Folders, 1)
		assert.Equal(t, keep.ID, root.Folders[0].ID)

		_, err = env.folders.GetFolder(env.ctx, env.db, child.ID)
		assert.ErrorIs(t, err, apperrors.ErrFolderNotFound)
	})

	t.Run("restore", func(t *testing.T) {
		require.NoError(t, env.folders.MassRestoreFolders(env.ctx, env.db, []uint{a.ID, 9999}))

		_, err := env.folders.GetFolder(env.ctx, env.db, child.ID)
		require.NoError(t, err)
		_, err = env.folders.GetFolder(env.ctx, env.db, b.ID)
		assert.ErrorIs(t, err, apperrors.ErrFolderNotFound, "b stays in trash")
	})

	t.Run("force delete", func(t *testing.T) {
		require.NoError(t, env.folders.MassForceDeleteFolders(env.ctx, env.db, []uint{a.ID, b.ID}))
		assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.Folder{}))
	})
}

func TestSingleFolderOperationsNotFound(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.folders.DeleteFolder(env.ctx, env.db, 1), apperrors.ErrFolderNotFound)
	assert.ErrorIs(t, env.folders.RestoreFolder(env.ctx, env.db, 1), apperrors.ErrFolderNotFound)
	assert.ErrorIs(t, env.folders.ForceDeleteFolder(env.ctx, env.db, 1), apperrors.ErrFolderNotFound)

	folder := testutil.CreateFolder(t, env.db, "gone", nil)
	require.NoError(t, env.folders.DeleteFolder(env.ctx, env.db, folder.ID))
	assert.ErrorIs(t, env.folders.DeleteFolder(env.ctx, env.db, folder.ID), apperrors.ErrFolderNotFound,
		"trashed folders cannot be trashed again")
}

func TestCreateAndUpdateFolder(t *testing.T) {
	env := newTestEnv(t)

	missing := uint(77)
	_, err := env.folders.CreateFolder(env.ctx, env.db, &missing, &dto.CreateFolderRequest{Name: "x"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrFolderNotFound)

	desc := "quarterly"
	folder, err := env.folders.CreateFolder(env.ctx, env.db, nil, &dto.CreateFolderRequest{Name: "Reports", Description: &desc}, &models.Actor{ID: 3, Type: "jwt"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"type":"jwt"}`, string(folder.CreatedBy))

	updated, err := env.folders.UpdateFolder(env.ctx, env.db, folder.ID, &dto.UpdateFolderRequest{Name: "Archive", IsPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, "Archive", updated.Name)
	assert.True(t, updated.IsPrivate)

	reloaded, err := env.folders.GetFolder(env.ctx, env.db, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Archive", reloaded.Name)
	assert.Nil(t, reloaded.Description)
	assert.NotNil(t, reloaded.Tags)
}
