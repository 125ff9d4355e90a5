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

	"github.com/tomtom215/hearth/internal/models"
)

// GetCredential returns the user's Spotify credential or models.ErrCredentialNotFound.
func (s *Store) GetCredential(ctx context.Context, userID string) (models.Credential, error) {
	var cred models.Credential
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, credentialKeyPrefix+userID, &cred)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Credential{}, models.ErrCredentialNotFound
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

// SaveCredential creates or replaces the user's credential.
func (s *Store) SaveCredential(ctx context.Context, userID string, cred models.Credential) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(userKeyPrefix + userID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return models.ErrUserNotFound
			}
			return fmt.Errorf("check user: %w", err)
		}
		if err := setJSON(txn, credentialKeyPrefix+userID, cred); err != nil {
			return fmt.Errorf("set credential: %w", err)
		}
		return nil
	})
}

// DeleteCredential removes the user's credential. Deleting a missing
// credential is not an error.
func (s *Store) DeleteCredential(ctx context.Context, userID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(credentialKeyPrefix + userID)); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
}

// HasCredential reports whether the user has connected Spotify.
func (s *Store) HasCredential(ctx context.Context, userID string) (bool, error) {
	_, err := s.GetCredential(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrCredentialNotFound):
		return false, nil
	default:
		return false, err
	}
}
