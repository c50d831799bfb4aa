package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// localStore implements Store on a directory.
type localStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates dir if needed and returns a Store rooted there.
func NewLocalStore(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}

	return &localStore{
		dir:    dir,
		logger: logger.With().Str("component", "local-media-store").Logger(),
	}, nil
}

// Save writes r to dir/name. Same-name uploads overwrite each other.
func (s *localStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	clean := SanitizeFilename(name)
	if clean == "" {
		return "", ErrInvalidName
	}

	path := filepath.Join(s.dir, clean)
	f, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to create media file")
		return "", fmt.Errorf("failed to create media file %s: %w", clean, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write media file")
		return "", fmt.Errorf("failed to write media file %s: %w", clean, err)
	}

	s.logger.Info().Str("file", clean).Int64("bytes", n).Msg("media file saved")
	return clean, nil
}

// Open opens dir/name. Names that are not already sanitized are rejected as
// not found so callers cannot escape the media directory.
func (s *localStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || SanitizeFilename(name) != name {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("file", name).Msg("failed to open media file")
		return nil, fmt.Errorf("failed to open media file %s: %w", name, err)
	}

	return f, nil
}
