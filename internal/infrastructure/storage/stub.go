package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	appinvoicing "github.com/paydesk/backend/internal/application/invoicing"
)

// StubScreenshotStorage is an in-memory ObjectStorage used when no storage
// provider is configured. Objects live for the process lifetime only.
type StubScreenshotStorage struct {
	// BaseURL is the base URL for generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubScreenshotStorage creates a new StubScreenshotStorage
func NewStubScreenshotStorage() *StubScreenshotStorage {
	return &StubScreenshotStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubScreenshotStorage implements ObjectStorage
var _ appinvoicing.ObjectStorage = (*StubScreenshotStorage)(nil)

// Upload keeps the object in memory
func (s *StubScreenshotStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

// DownloadURL generates a stub download URL
func (s *StubScreenshotStorage) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + key + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// Delete removes the object; deleting a missing key succeeds
func (s *StubScreenshotStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists reports whether the object was uploaded
func (s *StubScreenshotStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}
