package invoicing

import (
	"context"
	"time"
)

// ObjectStorage stores payment screenshot images. Implementations live in
// the infrastructure layer (S3-compatible backends or a stub).
type ObjectStorage interface {
	// Upload stores the object under the given key.
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// DownloadURL returns a presigned GET URL for the object.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether the object is present.
	Exists(ctx context.Context, key string) (bool, error)
}
