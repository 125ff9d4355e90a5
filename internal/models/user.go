// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package models

import (
	"errors"
	"time"
)

// Sentinel errors returned by user storage.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrLocationNotSet     = errors.New("location not set")
)

// Units for displayed measurements.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// User is a persisted account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	Location     *Location `json:"location,omitempty"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Location is the display's physical position, used for weather.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// Settings holds display preferences.
type Settings struct {
	Units    string `json:"units"`
	Clock24h bool   `json:"clock_24h"`
	Theme    string `json:"theme"`
}

// DefaultSettings returns the settings applied to new accounts.
func DefaultSettings() Settings {
	return Settings{
		Units:    UnitsMetric,
		Clock24h: true,
		Theme:    "dark",
	}
}

// UserView is the client-facing projection of a User. It never carries secrets.
type UserView struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	Location         *Location `json:"location,omitempty"`
	Settings         Settings  `json:"settings"`
	SpotifyConnected bool      `json:"spotify_connected"`
}

// View projects the user for clients.
func (u *User) View(spotifyConnected bool) UserView {
	v := UserView{
		ID:               u.ID,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		Settings:         u.Settings,
		SpotifyConnected: spotifyConnected,
	}
	if u.Location != nil {
		loc := *u.Location
		v.Location = &loc
	}
	return v
}

// Credential is an OAuth credential for the music integration.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (c Credential) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}
