// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package events defines the in-process event bus and the closed set of
// events carried on it.
package events

import "github.com/tomtom215/hearth/internal/models"

// Kind names an event type. It doubles as the bus topic.
type Kind string

const (
	KindUserProfileUpdated  Kind = "user.profile.updated"
	KindMusicStateUpdated   Kind = "music.state.updated"
	KindWeatherStateUpdated Kind = "weather.state.updated"
)

// AllKinds lists every event kind.
func AllKinds() []Kind {
	return []Kind{KindUserProfileUpdated, KindMusicStateUpdated, KindWeatherStateUpdated}
}

// Event is implemented only by the types in this package. Consumers switch
// on the concrete type.
type Event interface {
	Kind() Kind
	event()
}

// UserProfileUpdated is published after a user's stored profile changes.
type UserProfileUpdated struct {
	UserID   string          `json:"user_id"`
	Previous models.UserView `json:"previous"`
	Current  models.UserView `json:"current"`
}

// MusicStateUpdated carries a new playback snapshot for one user.
type MusicStateUpdated struct {
	UserID      string               `json:"user_id"`
	Subscribers []string             `json:"subscribers"`
	Snapshot    models.MusicSnapshot `json:"snapshot"`
	Direct      bool                 `json:"direct,omitempty"`
}

// WeatherStateUpdated carries new conditions for one location key.
type WeatherStateUpdated struct {
	LocationKey string                 `json:"location_key"`
	Subscribers []string               `json:"subscribers"`
	Snapshot    models.WeatherSnapshot `json:"snapshot"`
	Direct      bool                   `json:"direct,omitempty"`
}

func (UserProfileUpdated) Kind() Kind  { return KindUserProfileUpdated }
func (MusicStateUpdated) Kind() Kind   { return KindMusicStateUpdated }
func (WeatherStateUpdated) Kind() Kind { return KindWeatherStateUpdated }

func (UserProfileUpdated) event()  {}
func (MusicStateUpdated) event()   {}
func (WeatherStateUpdated) event() {}

// Targets reports whether userID is among the event's subscribers.
func (e MusicStateUpdated) Targets(userID string) bool {
	if len(e.Subscribers) == 0 {
		return e.UserID == userID
	}
	return contains(e.Subscribers, userID)
}

// Targets reports whether userID is among the event's subscribers.
func (e WeatherStateUpdated) Targets(userID string) bool {
	return contains(e.Subscribers, userID)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
