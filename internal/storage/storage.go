package storage

import (
	"context"
	"io"
)

// Storage abstracts where uploaded resume files live.
type Storage interface {
	// Save stores the object at the given key, replacing any existing object.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
