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
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalBackend stores objects as files below a root directory.
// Content types are derived from file extensions.
type LocalBackend struct {
	root string
}

// NewLocalBackend creates root if needed and returns a backend rooted there.
func NewLocalBackend(root string) (*LocalBackend, error) {
	if root == "" {
		return nil, errors.New("local storage path is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}
	return &LocalBackend{root: root}, nil
}

// Close is a no-op.
func (b *LocalBackend) Close() error { return nil }

func (b *LocalBackend) path(key string) (string, error) {
	p := filepath.Join(b.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidName
	}
	return p, nil
}

// Put writes data to key atomically.
func (b *LocalBackend) Put(_ context.Context, key string, data []byte, contentType string) (ObjectInfo, error) {
	p, err := b.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return ObjectInfo{}, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ObjectInfo{}, fmt.Errorf("write to local storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return ObjectInfo{}, fmt.Errorf("rename into place: %w", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat stored file: %w", err)
	}
	return ObjectInfo{Name: key, Size: info.Size(), ContentType: contentType, Updated: info.ModTime()}, nil
}

// Get opens key for reading.
func (b *LocalBackend) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := b.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("read from local storage: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat local file: %w", err)
	}
	return f, localInfo(key, info), nil
}

// Delete removes key.
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	if err != nil {
		return fmt.Errorf("delete from local storage: %w", err)
	}
	return nil
}

// List returns regular files directly under prefix sorted by name.
func (b *LocalBackend) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	dir, err := b.path(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ObjectInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local storage directory: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, localInfo(prefix+entry.Name(), info))
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

func localInfo(key string, info fs.FileInfo) ObjectInfo {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ObjectInfo{Name: key, Size: info.Size(), ContentType: contentType, Updated: info.ModTime()}
}
