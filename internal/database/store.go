// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/logging"
)

const (
	userKeyPrefix       = "user:"
	usernameKeyPrefix   = "username:"
	credentialKeyPrefix = "credential:"
	pingKey             = "meta:ping"
)

// Config configures the store.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

// Store is the user and credential store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("database path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // badger's own logger is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	logging.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("User store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close user store")
		return err
	}
	return nil
}

// Ping verifies the database accepts writes. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("database closed")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pingKey), []byte{1})
	})
}

func getJSON(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}
