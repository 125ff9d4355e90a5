// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tomtom215/hearth/internal/logging"
)

// GCSConfig configures a GCSBackend.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string // Empty uses application default credentials
	RetryAttempts   int
}

// GCSBackend stores objects in a Google Cloud Storage bucket.
type GCSBackend struct {
	client   *storage.Client
	bucket   string
	attempts uint
	delay    time.Duration
	logger   zerolog.Logger
}

// NewGCSBackend connects to Cloud Storage.
func NewGCSBackend(ctx context.Context, cfg GCSConfig) (*GCSBackend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return newGCSBackend(client, cfg), nil
}

func newGCSBackend(client *storage.Client, cfg GCSConfig) *GCSBackend {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &GCSBackend{
		client:   client,
		bucket:   cfg.Bucket,
		attempts: uint(attempts),
		delay:    200 * time.Millisecond,
		logger:   logging.WithComponent("gcs").With().Str("bucket", cfg.Bucket).Logger(),
	}
}

// Close closes the storage client.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}

// do runs op with retries. Missing objects are not retried and come back as ErrObjectNotFound.
func (b *GCSBackend) do(ctx context.Context, operation, key string, op func() error) error {
	var lastErr error
	err := retry.Do(
		func() error {
			lastErr = op()
			if errors.Is(lastErr, storage.ErrObjectNotExist) {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Attempts(b.attempts),
		retry.Delay(b.delay),
		retry.MaxDelay(5*time.Second),
		retry.MaxJitter(250*time.Millisecond),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			b.logger.Info().
				Uint("attempt", n).
				Str("operation", operation).
				Str("key", key).
				Err(retryErr).
				Msg("Retrying storage operation after error")
		}),
	)
	if err == nil {
		return nil
	}
	if errors.Is(lastErr, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	if lastErr == nil {
		lastErr = err
	}
	return fmt.Errorf("%s after retries: %w", operation, lastErr)
}

// Put writes data to key.
func (b *GCSBackend) Put(ctx context.Context, key string, data []byte, contentType string) (ObjectInfo, error) {
	var info ObjectInfo
	err := b.do(ctx, "put", key, func() error {
		w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
		w.ContentType = contentType
		if _, writeErr := w.Write(data); writeErr != nil {
			if closeErr := w.Close(); closeErr != nil {
				b.logger.Warn().Err(closeErr).Msg("Failed to close writer after error")
			}
			return fmt.Errorf("write to storage: %w", writeErr)
		}
		if closeErr := w.Close(); closeErr != nil {
			return fmt.Errorf("close storage writer: %w", closeErr)
		}
		info = objectInfo(w.Attrs())
		return nil
	})
	return info, err
}

// Get opens key for reading.
func (b *GCSBackend) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	var reader *storage.Reader
	err := b.do(ctx, "get", key, func() error {
		r, openErr := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
		if openErr != nil {
			return fmt.Errorf("open storage reader: %w", openErr)
		}
		reader = r
		return nil
	})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	return reader, ObjectInfo{
		Name:        key,
		Size:        reader.Attrs.Size,
		ContentType: reader.Attrs.ContentType,
		Updated:     reader.Attrs.LastModified,
	}, nil
}

// Delete removes key.
func (b *GCSBackend) Delete(ctx context.Context, key string) error {
	return b.do(ctx, "delete", key, func() error {
		return b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	})
}

// List returns every object under prefix sorted by name.
func (b *GCSBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := b.do(ctx, "list", prefix, func() error {
		objects = objects[:0]
		it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("iterate storage: %w", err)
			}
			objects = append(objects, objectInfo(attrs))
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

func objectInfo(attrs *storage.ObjectAttrs) ObjectInfo {
	if attrs == nil {
		return ObjectInfo{}
	}
	return ObjectInfo{
		Name:        attrs.Name,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
	}
}
