package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Load when the key does not exist
var ErrNotFound = errors.New("stored object not found")

// Backend stores named content. Keys are slash separated and relative, e.g.
// "voices/2026/10/17/<id>/lecture.m4a".
type Backend interface {
	// Save writes data under key and returns the key it was stored at
	Save(ctx context.Context, data io.Reader, key string) (string, error)

	// Load opens the content stored under key
	Load(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if key is present
	Exists(ctx context.Context, key string) (bool, error)
}

// LocalFiler is implemented by backends whose objects are already plain files
type LocalFiler interface {
	LocalPath(key string) (string, error)
}
