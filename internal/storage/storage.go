package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found in storage")

// CertificateStorage defines the interface for the certificate object cache.
// It is append-only from the application's perspective: a stored certificate
// is never mutated in place, only fetched by its deterministic key.
type CertificateStorage interface {
	// Get fetches the object stored under the key, or ErrObjectNotFound.
	Get(ctx context.Context, objectKey string) ([]byte, error)

	// Put stores the object under the key with the given content type. The
	// write is all-or-nothing; a failed or timed-out render never leaves a
	// partial object registered under the key.
	Put(ctx context.Context, objectKey string, data []byte, contentType string) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
