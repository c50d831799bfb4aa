package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Store implements Store on an S3 bucket under a key prefix.
type s3Store struct {
	client s3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed media store using the default AWS
// credential chain.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-media-store").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 media store initialised")

	return newS3Store(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Store(client s3API, bucket, prefix string, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *s3Store) key(name string) string {
	return s.prefix + name
}

// Save uploads r to the bucket. The body is buffered because uploads are
// size-limited and S3 needs a seekable payload to sign.
func (s *s3Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	clean := SanitizeFilename(name)
	if clean == "" {
		return "", ErrInvalidName
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("failed to read media upload: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clean)),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if ct := mime.TypeByExtension(filepath.Ext(clean)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key(clean)).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, s.key(clean), err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", s.key(clean)).
		Int("bytes", buf.Len()).
		Msg("media file uploaded to S3")

	return clean, nil
}

// Open streams an object from the bucket.
func (s *s3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || SanitizeFilename(name) != name {
		return nil, ErrNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", s.key(name)).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, s.key(name), err)
	}

	return out.Body, nil
}

// fallbackStore tries the remote store first, then the local one.
type fallbackStore struct {
	remote Store
	local  Store
	logger zerolog.Logger
}

// NewFallbackStore creates a Store that prefers remote and falls back to local.
func NewFallbackStore(remote, local Store, logger zerolog.Logger) Store {
	return &fallbackStore{
		remote: remote,
		local:  local,
		logger: logger.With().Str("component", "fallback-media-store").Logger(),
	}
}

// Save uploads to the remote store. If that fails the body can no longer be
// replayed, so the upload is only retried locally when r is seekable.
func (s *fallbackStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	stored, err := s.remote.Save(ctx, name, r)
	if err == nil {
		return stored, nil
	}

	seeker, ok := r.(io.Seeker)
	if !ok {
		return "", err
	}
	if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
		return "", err
	}

	s.logger.Warn().
		Err(err).
		Str("file", name).
		Msg("failed to save to S3, falling back to local file system")

	return s.local.Save(ctx, name, r)
}

// Open reads from the remote store and falls back to local on any error.
func (s *fallbackStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.remote.Open(ctx, name)
	if err == nil {
		return rc, nil
	}

	s.logger.Debug().
		Err(err).
		Str("file", name).
		Msg("media not available from S3, trying local file system")

	return s.local.Open(ctx, name)
}
