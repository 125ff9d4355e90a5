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
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
	"github.com/tomtom215/hearth/internal/validation"
)

var (
	// ErrObjectNotFound is returned when the requested file does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidName is returned for names that are not a single safe path segment.
	ErrInvalidName = errors.New("invalid file name")

	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("file too large")
)

// DefaultMaxUploadBytes is used when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// ObjectInfo describes a stored file.
type ObjectInfo struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Updated     time.Time `json:"updated"`
}

// Backend persists raw objects by key.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Close() error
}

// Store applies per-user naming and limits on top of a Backend.
type Store struct {
	backend  Backend
	maxBytes int64
}

// NewStore creates a Store. A non-positive maxBytes uses DefaultMaxUploadBytes.
func NewStore(backend Backend, maxBytes int64) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Store{backend: backend, maxBytes: maxBytes}
}

// MaxUploadBytes returns the upload size limit.
func (s *Store) MaxUploadBytes() int64 {
	return s.maxBytes
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func userPrefix(userID string) string {
	return "users/" + userID + "/"
}

func (s *Store) key(userID, name string) (string, error) {
	if !validation.IsObjectName(userID) || !validation.IsObjectName(name) {
		return "", ErrInvalidName
	}
	return userPrefix(userID) + name, nil
}

// List returns the user's files sorted by name.
func (s *Store) List(ctx context.Context, userID string) ([]ObjectInfo, error) {
	if !validation.IsObjectName(userID) {
		return nil, ErrInvalidName
	}
	prefix := userPrefix(userID)
	objects, err := s.backend.List(ctx, prefix)
	metrics.RecordStorageOperation("list", err)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if objects == nil {
		objects = []ObjectInfo{}
	}
	for i := range objects {
		objects[i].Name = strings.TrimPrefix(objects[i].Name, prefix)
	}
	return objects, nil
}

// Upload stores r as the user's file name, replacing any existing file.
// Content beyond the size limit fails with ErrTooLarge and nothing is written.
func (s *Store) Upload(ctx context.Context, userID, name string, r io.Reader, contentType string) (ObjectInfo, error) {
	key, err := s.key(userID, name)
	if err != nil {
		return ObjectInfo{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return ObjectInfo{}, ErrTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	info, err := s.backend.Put(ctx, key, data, contentType)
	metrics.RecordStorageOperation("put", err)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("store file: %w", err)
	}
	info.Name = name

	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Str("name", name).
		Int("bytes", len(data)).
		Msg("File stored")
	return info, nil
}

// Download opens the user's file. The caller closes the reader.
func (s *Store) Download(ctx context.Context, userID, name string) (io.ReadCloser, ObjectInfo, error) {
	key, err := s.key(userID, name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	rc, info, err := s.backend.Get(ctx, key)
	metrics.RecordStorageOperation("get", ignoreNotFound(err))
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	info.Name = name
	return rc, info, nil
}

// Delete removes the user's file. Deleting a missing file returns ErrObjectNotFound.
func (s *Store) Delete(ctx context.Context, userID, name string) error {
	key, err := s.key(userID, name)
	if err != nil {
		return err
	}
	err = s.backend.Delete(ctx, key)
	metrics.RecordStorageOperation("delete", ignoreNotFound(err))
	return err
}

// ignoreNotFound keeps expected misses out of the error metric.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}
