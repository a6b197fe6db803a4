package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get/MimeType when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Storage defines the object store contract used by the file manager.
// Keys are opaque; callers never derive them from folder or filename.
type Storage interface {
	// Name identifies the disk in logs ("public", "private")
	Name() string

	// Put stores the object under key
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens the object for reading
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object; a missing object is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks whether the object is present
	Exists(ctx context.Context, key string) (bool, error)

	// MimeType returns the stored content type
	MimeType(ctx context.Context, key string) (string, error)

	// URL returns the deterministic public URL of the object
	URL(key string) string

	// PresignGet returns a time-limited GET URL
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// KeyFromURL extracts the object key from a URL this store issued.
	// ok is false for URLs that belong elsewhere.
	KeyFromURL(rawURL string) (key string, ok bool)
}

// Config holds storage configuration for a single disk
type Config struct {
	Type           string // s3, local, memory
	Name           string // public, private
	BasePath       string // For local storage
	BaseURL        string // For local storage
	Bucket         string // For S3
	Region         string // For S3
	AccessKey      string // For S3
	SecretKey      string // For S3
	Endpoint       string // S3-compatible API endpoint
	PublicEndpoint string // Base of public URLs; defaults to Endpoint
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "memory":
		return NewMemoryStorage(cfg.Name, cfg.PublicEndpoint, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
