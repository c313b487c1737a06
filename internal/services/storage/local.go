package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/killallgit/voicenote-api/pkg/config"
	"github.com/rs/zerolog/log"
)

// Materialize returns a local file path holding the content of key. Backends
// that already keep plain files hand back their own path; anything else is
// copied into tempDir. The returned cleanup func must always be called.
func Materialize(ctx context.Context, backend Backend, key, tempDir string) (string, func(), error) {
	if lf, ok := backend.(LocalFiler); ok {
		p, err := lf.LocalPath(key)
		if err != nil {
			return "", func() {}, err
		}
		if _, err := os.Stat(p); err != nil {
			return "", func() {}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return p, func() {}, nil
	}

	src, err := backend.Load(ctx, key)
	if err != nil {
		return "", func() {}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(tempDir, "voice_source_*"+path.Ext(key))
	if err != nil {
		return "", func() {}, fmt.Errorf("creating local copy: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("failed to remove local copy")
		}
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("copying %s locally: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("closing local copy: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

// New builds the backend selected by the storage configuration
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "filesystem":
		fs, err := NewFilesystemStorage(cfg.MediaRoot)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "s3":
		s3, err := NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
