package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	Key string
	// Location is the public URL of the object, empty when no public base URL is configured.
	Location string
	ETag     string
}

// ObjectStore is the small slice of an S3-compatible bucket the app needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Download returns ErrObjectNotFound when the key does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}
