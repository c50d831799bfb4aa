// Package storage keeps product media files on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"

	"shopfront/internal/config"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when a media file does not exist.
var ErrNotFound = errors.New("media file not found")

// ErrInvalidName is returned when a filename sanitizes to nothing.
var ErrInvalidName = errors.New("invalid media filename")

// Store saves and opens media files by name.
type Store interface {
	// Save writes r under the sanitized form of name and returns that
	// stored name. An existing file with the same name is replaced.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Open returns the file contents. The caller closes the reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces name to a safe, ASCII-only base name: accents are
// decomposed and dropped, path separators become underscores, whitespace runs
// collapse to one underscore and leading dots or underscores are removed.
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	cleaned := strings.Join(strings.Fields(b.String()), "_")
	cleaned = unsafeFilenameChars.ReplaceAllString(cleaned, "")
	return strings.TrimLeft(cleaned, "._")
}

// New builds the media store for cfg. When S3 is enabled, writes and reads go
// to the bucket first and fall back to the local media directory.
func New(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	local, err := NewLocalStore(cfg.MediaDir, logger)
	if err != nil {
		return nil, err
	}

	if !cfg.S3Enabled {
		logger.Info().Str("media_dir", cfg.MediaDir).Msg("using local file system for media (S3 disabled)")
		return local, nil
	}

	remote, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 media store, falling back to local file system only")
		return local, nil
	}

	return NewFallbackStore(remote, local, logger), nil
}
