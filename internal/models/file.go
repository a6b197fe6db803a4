package models

import (
	"time"

	"gorm.io/datatypes"
)

// Visibility - какой бакет хранит объект файла
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility разбирает строку; пустая строка -> private
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case "":
		return VisibilityPrivate, true
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), true
	default:
		return "", false
	}
}

// File - метаданные загруженного файла. ObjectKey неизменен после создания;
// Path, SignedURL и SignedURLExpiresAt - только кэш ссылки доступа.
type File struct {
	BaseModelWithDeleted
	FoldersID          *uint          `gorm:"column:folders_id;index" json:"folders_id"`
	Title              string         `gorm:"size:255" json:"title"`
	OriginalName       string         `gorm:"size:255" json:"original_name"`
	Size               int64          `json:"size"`
	Mime               string         `gorm:"size:127" json:"mime"`
	Path               string         `gorm:"type:text" json:"path"`
	ObjectKey          string         `gorm:"size:512;index" json:"object_key"`
	Visibility         Visibility     `gorm:"size:16;not null;default:private" json:"visibility"`
	IsEntity           bool           `gorm:"not null;default:false;index" json:"is_entity"`
	SignedURL          *string        `gorm:"column:signed_url;type:text" json:"-"`
	SignedURLExpiresAt *time.Time     `gorm:"column:signed_url_expires_at" json:"signed_url_expires_at"`
	ChecksumSHA256     string         `gorm:"column:checksum_sha256;size:64" json:"checksum_sha256"`
	SourceText         *string        `gorm:"type:text" json:"source_text"`
	MetaData           datatypes.JSON `json:"meta_data,omitempty"`

	Tags []Tag `gorm:"-" json:"tags,omitempty"`
}

func (File) TableName() string {
	return "files"
}

// IsPublic - объект лежит в публичном бакете
func (f *File) IsPublic() bool {
	return f.Visibility == VisibilityPublic
}
