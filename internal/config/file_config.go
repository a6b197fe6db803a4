package config

import "time"

// FileConfig - настройки файлового менеджера
type FileConfig struct {
	ObjectNamespace    string `yaml:"object_namespace"`     // префикс ключей объектов
	SignedURLTTLHours  int    `yaml:"signed_url_ttl_hours"` // срок жизни подписанной ссылки
	MaxUploadSize      int64  `yaml:"max_upload_size"`      // байты на один файл
	BreadcrumbMaxLevel int    `yaml:"breadcrumb_max_levels"`
	BackfillBatchSize  int    `yaml:"backfill_batch_size"`
	// 0 - фоновое обновление ссылок выключено
	URLRefreshIntervalHours int `yaml:"url_refresh_interval_hours"`
}

const (
	DefaultObjectNamespace    = "FileManager/files"
	DefaultSignedURLTTLHours  = 24
	DefaultMaxUploadSize      = 50 * 1024 * 1024 // 50MB
	DefaultBreadcrumbMaxLevel = 3
	DefaultBackfillBatchSize  = 200
)

func (f *FileConfig) applyDefaults() {
	if f.ObjectNamespace == "" {
		f.ObjectNamespace = DefaultObjectNamespace
	}
	if f.SignedURLTTLHours <= 0 {
		f.SignedURLTTLHours = DefaultSignedURLTTLHours
	}
	if f.MaxUploadSize <= 0 {
		f.MaxUploadSize = DefaultMaxUploadSize
	}
	if f.BreadcrumbMaxLevel <= 0 {
		f.BreadcrumbMaxLevel = DefaultBreadcrumbMaxLevel
	}
	if f.BackfillBatchSize <= 0 {
		f.BackfillBatchSize = DefaultBackfillBatchSize
	}
}

// SignedURLTTL - срок жизни подписанной ссылки как Duration
func (f FileConfig) SignedURLTTL() time.Duration {
	return time.Duration(f.SignedURLTTLHours) * time.Hour
}

// URLRefreshInterval - период фонового пересоздания ссылок
func (f FileConfig) URLRefreshInterval() time.Duration {
	return time.Duration(f.URLRefreshIntervalHours) * time.Hour
}
