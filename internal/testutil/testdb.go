package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"filemanager/database"
	"filemanager/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB открывает отдельную in-memory базу sqlite с примененными миграциями.
// База живет, пока открыто хотя бы одно соединение, и закрывается в t.Cleanup.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=0", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одно соединение: sqlite не любит параллельные записи
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "migrate")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// ============================================
// Фикстуры
// ============================================

// CreateFolder создает папку; parent == nil -> корень
func CreateFolder(t *testing.T, db *gorm.DB, name string, parent *models.Folder) *models.Folder {
	t.Helper()

	folder := &models.Folder{Name: name}
	if parent != nil {
		id := parent.ID
		folder.ParentID = &id
	}
	require.NoError(t, db.Create(folder).Error, "create folder %s", name)
	return folder
}

// CreateChain создает цепочку вложенных папок и возвращает ее от корня
func CreateChain(t *testing.T, db *gorm.DB, names ...string) []*models.Folder {
	t.Helper()

	chain := make([]*models.Folder, 0, len(names))
	var parent *models.Folder
	for _, name := range names {
		parent = CreateFolder(t, db, name, parent)
		chain = append(chain, parent)
	}
	return chain
}

// CreateFile создает строку файла без объекта в хранилище
func CreateFile(t *testing.T, db *gorm.DB, title string, folder *models.Folder, visibility models.Visibility) *models.File {
	t.Helper()

	file := &models.File{
		Title:        title,
		OriginalName: title,
		Mime:         "text/plain",
		Visibility:   visibility,
		ObjectKey:    "test/" + title,
	}
	if folder != nil {
		id := folder.ID
		file.FoldersID = &id
	}
	require.NoError(t, db.Create(file).Error, "create file %s", title)
	return file
}

func CreateTask(t *testing.T, db *gorm.DB, title string) *models.Task {
	t.Helper()

	task := &models.Task{Title: title}
	require.NoError(t, db.Create(task).Error)
	return task
}

// CountRows считает строки, включая мягко удаленные
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Unscoped().Model(model).Count(&n).Error)
	return n
}
