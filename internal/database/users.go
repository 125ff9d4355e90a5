// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/hearth/internal/models"
)

func usernameKey(username string) string {
	return usernameKeyPrefix + strings.ToLower(username)
}

// CreateUser stores a new user. Usernames are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" || user.Username == "" {
		return errors.New("user id and username are required")
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(usernameKey(user.Username)))
		switch {
		case err == nil:
			return models.ErrUsernameTaken
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("check username: %w", err)
		}
		if err := setJSON(txn, userKeyPrefix+user.ID, user); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if err := txn.Set([]byte(usernameKey(user.Username)), []byte(user.ID)); err != nil {
			return fmt.Errorf("set username index: %w", err)
		}
		return nil
	})
}

// GetUserByID returns the user or models.ErrUserNotFound.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername resolves a username through the index.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(usernameKey(username)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+string(id), &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

// GetUserLocation returns the user's saved location or models.ErrLocationNotSet.
func (s *Store) GetUserLocation(ctx context.Context, id string) (models.Location, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.Location{}, err
	}
	if user.Location == nil {
		return models.Location{}, models.ErrLocationNotSet
	}
	return *user.Location, nil
}

// UpdateLocation replaces the user's location and returns the record before
// and after the change.
func (s *Store) UpdateLocation(ctx context.Context, id string, loc models.Location) (prev, cur *models.User, err error) {
	return s.updateUser(id, func(u *models.User) {
		l := loc
		u.Location = &l
	})
}

// UpdateSettings replaces the user's display settings and returns the record
// before and after the change.
func (s *Store) UpdateSettings(ctx context.Context, id string, settings models.Settings) (prev, cur *models.User, err error) {
	return s.updateUser(id, func(u *models.User) {
		u.Settings = settings
	})
}

func (s *Store) updateUser(id string, mutate func(*models.User)) (prev, cur *models.User, err error) {
	err = s.db.Update(func(txn *badger.Txn) error {
		var before models.User
		if err := getJSON(txn, userKeyPrefix+id, &before); err != nil {
			return err
		}
		// Decode twice so the two records share no pointers.
		var after models.User
		if err := getJSON(txn, userKeyPrefix+id, &after); err != nil {
			return err
		}
		mutate(&after)
		after.UpdatedAt = time.Now().UTC()
		if err := setJSON(txn, userKeyPrefix+id, &after); err != nil {
			return err
		}
		prev, cur = &before, &after
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("update user: %w", err)
	}
	return prev, cur, nil
}
