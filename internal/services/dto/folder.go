package dto

import (
	"time"

	"filemanager/internal/models"
)

// ============================================
// REQUEST STRUCTURES
// ============================================

// BrowseQuery - параметры просмотра папки
type BrowseQuery struct {
	MaxLevels int `form:"max_levels" json:"max_levels"` // вне 1..10 приводится к границе
}

type CreateFolderRequest struct {
	Name        string  `form:"name" json:"name" validate:"required,max=255"`
	Description *string `form:"description" json:"description"`
	IsPrivate   bool    `form:"is_private" json:"is_private"`
}

type UpdateFolderRequest struct {
	Name        string  `form:"name" json:"name" validate:"required,max=255"`
	Description *string `form:"description" json:"description"`
	IsPrivate   bool    `form:"is_private" json:"is_private"`
}

// MassFoldersRequest - массовые операции над папками
type MassFoldersRequest struct {
	FoldersID []uint `form:"folders_id" json:"folders_id"`
}

// ============================================
// RESPONSE STRUCTURES
// ============================================

// Breadcrumb - звено цепочки от корня до текущей папки.
// Hidden-звенья вне окна max_levels: только id/имя/родитель/время.
type Breadcrumb struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	ParentID  *uint         `json:"parent_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Hidden    bool          `json:"hidden"`
	IsCurrent bool          `json:"is_current"`
	Files     []models.File `json:"files"`
}

// BrowseResult - содержимое папки (или корня, если Folder == nil)
type BrowseResult struct {
	Folder      *models.Folder  `json:"current_folder"`
	Folders     []models.Folder `json:"folders"`
	Files       []models.File   `json:"files"`
	Breadcrumbs []Breadcrumb    `json:"breadcrumbs"`
}
