package storage

import (
	"context"
	"io"
)

// Storage is the blob-store boundary. Upload returns a locator: a directly
// fetchable URL for the stored object.
type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
