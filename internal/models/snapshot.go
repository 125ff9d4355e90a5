// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package models

import "time"

// Track is the item currently loaded in the user's player.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	DurationMs int      `json:"duration_ms"`
}

// MusicSnapshot is the playback state of one user. Item is nil when nothing
// is loaded in the player.
type MusicSnapshot struct {
	Playing    bool      `json:"playing"`
	Item       *Track    `json:"item"`
	ProgressMs int       `json:"progress_ms"`
	Device     string    `json:"device,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// ItemID returns the current item's ID, or "" when nothing is loaded.
func (s MusicSnapshot) ItemID() string {
	if s.Item == nil {
		return ""
	}
	return s.Item.ID
}

// Idle reports whether nothing is loaded in the player.
func (s MusicSnapshot) Idle() bool {
	return s.Item == nil
}

// WeatherSnapshot is the current conditions at one location.
type WeatherSnapshot struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Place       string    `json:"place,omitempty"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Units       string    `json:"units"`
	ObservedAt  time.Time `json:"observed_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}
