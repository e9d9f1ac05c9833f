// Package storage defines the object store used for campaign assets.
// Backends live in the local and s3 subpackages.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Storage is implemented by every asset backend. Keys are slash separated.
type Storage interface {
	// Upload stores reader under key and returns its size and SHA-256.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)

	// Download opens the object. Callers close the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns a URL the client can fetch the object from, valid for ttl
	// where the backend supports expiry.
	GetURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	Exists(ctx context.Context, key string) (bool, error)
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key      string
	Size     int64
	Checksum string
}
