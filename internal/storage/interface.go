package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Download when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage is the bucket holding mirrored remote bundles.
type ObjectStorage interface {
	// Upload stores an object under key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens the object under key; the caller closes it
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL of key
	GetURL(key string) string

	// Delete removes the object under key
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present
	Exists(ctx context.Context, key string) (bool, error)
}
