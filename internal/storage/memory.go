package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in a map. Every presigned URL is unique,
// which mirrors real signers closely enough for cache tests.
type MemoryStorage struct {
	name     string
	endpoint string
	bucket   string

	mu      sync.RWMutex
	objects map[string]memoryObject
	signed  int
}

// NewMemoryStorage creates an empty in-memory disk
func NewMemoryStorage(name, endpoint, bucket string) *MemoryStorage {
	if endpoint == "" {
		endpoint = "https://memory.local"
	}
	if bucket == "" {
		bucket = name
	}
	return &MemoryStorage{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   bucket,
		objects:  make(map[string]memoryObject),
	}
}

func (s *MemoryStorage) Name() string {
	return s.name
}

func (s *MemoryStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStorage) MimeType(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return "", ErrObjectNotFound
	}
	return obj.contentType, nil
}

func (s *MemoryStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}

func (s *MemoryStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	s.signed++
	n := s.signed
	s.mu.Unlock()

	q := url.Values{}
	q.Set("X-Expires", fmt.Sprintf("%d", int64(ttl.Seconds())))
	q.Set("X-Signature", fmt.Sprintf("sig-%d", n))
	return s.URL(key) + "?" + q.Encode(), nil
}

func (s *MemoryStorage) KeyFromURL(rawURL string) (string, bool) {
	return keyFromURL(rawURL, s.endpoint, s.bucket)
}

// Len returns the number of stored objects
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
