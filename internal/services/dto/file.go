package dto

import (
	"io"
	"time"

	"filemanager/internal/models"
)

// ============================================
// REQUEST STRUCTURES
// ============================================

// UploadMetaRequest - поля формы загрузки (сами файлы идут в "files")
type UploadMetaRequest struct {
	EntityType string `form:"entity_type" json:"entity_type" validate:"omitempty,max=100"`
	EntityID   string `form:"entity_id" json:"entity_id" validate:"required_with=EntityType,max=64"`
	IsEntity   bool   `form:"is_entity" json:"is_entity"`
	Visibility string `form:"visibility" json:"visibility" validate:"omitempty,is-visibility"`
}

// UploadMeta - разобранные метаданные загрузки
type UploadMeta struct {
	FolderID   *uint
	EntityType string
	EntityID   string
	IsEntity   bool
	Visibility models.Visibility
}

// Upload - один загружаемый файл. Open может вызываться только один раз.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type UpdateFileRequest struct {
	Name       string  `form:"name" json:"name" validate:"required,max=255"`
	SourceText *string `form:"source_text" json:"source_text"`
}

type MassFilesRequest struct {
	FilesID []uint `form:"files_id" json:"files_id"`
}

// ============================================
// RESPONSE STRUCTURES
// ============================================

// StoredFile - результат загрузки одного файла
type StoredFile struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Size       int64             `json:"size"`
	Mime       string            `json:"mime"`
	Visibility models.Visibility `json:"visibility"`
	ObjectKey  string            `json:"object_key"`
	Path       string            `json:"path"`
	ExpiresAt  *time.Time        `json:"expires_at"`
}

type StoreManyResult struct {
	Count int          `json:"count"`
	Files []StoredFile `json:"files"`
}

// AccessURL - ссылка доступа; ExpiresAt == nil для публичных файлов
type AccessURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Download - содержимое файла для отдачи клиенту
type Download struct {
	Body     io.ReadCloser
	Mime     string
	Filename string
	Size     int64
}
