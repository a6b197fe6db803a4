package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// LocalStorage implements Storage on the local filesystem.
// Used for development; it cannot sign URLs, so PresignGet
// returns the plain URL with an expiry hint.
type LocalStorage struct {
	name     string
	basePath string
	baseURL  string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = filepath.Join("./uploads", cfg.Name)
	}

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/files/" + cfg.Name
	}

	return &LocalStorage{
		name:     cfg.Name,
		basePath: cfg.BasePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Name() string {
	return s.name
}

func (s *LocalStorage) fullPath(key string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return full, nil
}

// Put stores a file locally
func (s *LocalStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Get retrieves a file from local storage
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in local storage
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MimeType guesses by extension first, then sniffs the content
func (s *LocalStorage) MimeType(ctx context.Context, key string) (string, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrObjectNotFound
		}
		return "", err
	}

	if byExt := mime.TypeByExtension(filepath.Ext(fullPath)); byExt != "" {
		return byExt, nil
	}

	detected, err := mimetype.DetectFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to detect mime type: %w", err)
	}
	return detected.String(), nil
}

// URL returns baseURL/key
func (s *LocalStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

// PresignGet returns the plain URL with an expires parameter
func (s *LocalStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
	return s.URL(key) + "?" + q.Encode(), nil
}

// KeyFromURL accepts URLs under baseURL
func (s *LocalStorage) KeyFromURL(rawURL string) (string, bool) {
	return keyFromURL(rawURL, s.baseURL, "")
}
