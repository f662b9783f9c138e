package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubScreenshotStorage_RoundTrip(t *testing.T) {
	s := NewStubScreenshotStorage()
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "screenshots/INV-1/a.jpg", []byte("img"), "image/jpeg"))

	exists, err := s.Exists(ctx, "screenshots/INV-1/a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(ctx, "screenshots/INV-1/missing.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStubScreenshotStorage_DownloadURL(t *testing.T) {
	s := NewStubScreenshotStorage()

	url, expiresAt, err := s.DownloadURL(context.Background(), "screenshots/INV-1/a.jpg", 5*time.Minute)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://storage.example.com/download/screenshots/INV-1/a.jpg"))
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Minute)
}

func TestStubScreenshotStorage_Delete(t *testing.T) {
	s := NewStubScreenshotStorage()
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "k", []byte("img"), "image/png"))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStubScreenshotStorage_EmptyKeyRejected(t *testing.T) {
	s := NewStubScreenshotStorage()
	ctx := context.Background()

	assert.Error(t, s.Upload(ctx, "", nil, ""))
	_, _, err := s.DownloadURL(ctx, "", 0)
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, ""))
	_, err = s.Exists(ctx, "")
	assert.Error(t, err)
}

func TestScreenshotKey(t *testing.T) {
	key := ScreenshotKey("INV-2025-001", "photo.PNG")
	assert.True(t, strings.HasPrefix(key, "screenshots/INV-2025-001/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	key = ScreenshotKey("INV-2025-001", "noext")
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// Two keys for the same file never collide
	assert.NotEqual(t, ScreenshotKey("I", "a.jpg"), ScreenshotKey("I", "a.jpg"))
}
