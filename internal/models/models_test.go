// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestUserViewOmitsSecrets(t *testing.T) {
	u := &User{
		ID:           "u-1",
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: "$2a$10$secret",
		Location:     &Location{Latitude: 52.52, Longitude: 13.40, Name: "Berlin"},
		Settings:     DefaultSettings(),
	}

	view := u.View(true)
	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "secret") || strings.Contains(string(data), "password") {
		t.Errorf("view leaks the password hash: %s", data)
	}
	if !view.SpotifyConnected || view.DisplayName != "Alice" {
		t.Errorf("view = %+v", view)
	}

	// The view owns its location.
	u.Location.Name = "Munich"
	if view.Location.Name != "Berlin" {
		t.Error("view location shares memory with the user record")
	}
}

func TestUserViewWithoutLocation(t *testing.T) {
	view := (&User{ID: "u-1"}).View(false)
	if view.Location != nil {
		t.Errorf("Location = %+v, want nil", view.Location)
	}
	data, _ := json.Marshal(view)
	if strings.Contains(string(data), `"location"`) {
		t.Errorf("nil location should be omitted: %s", data)
	}
}

func TestCredentialExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"zero expiry", time.Time{}, false},
		{"future", now.Add(time.Minute), false},
		{"exactly now", now, false},
		{"past", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Credential{Expiry: tt.expiry}).Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMusicSnapshotItem(t *testing.T) {
	idle := MusicSnapshot{}
	if !idle.Idle() || idle.ItemID() != "" {
		t.Errorf("idle snapshot: Idle()=%v ItemID()=%q", idle.Idle(), idle.ItemID())
	}

	playing := MusicSnapshot{Playing: true, Item: &Track{ID: "song-a"}}
	if playing.Idle() || playing.ItemID() != "song-a" {
		t.Errorf("playing snapshot: Idle()=%v ItemID()=%q", playing.Idle(), playing.ItemID())
	}
}
