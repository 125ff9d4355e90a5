// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import "github.com/tomtom215/hearth/internal/models"

// Outbound message types.
const (
	MessageTypeState         = "STATE"
	MessageTypeSettings      = "SETTINGS"
	MessageTypeMusicUpdate   = "MUSIC_UPDATE"
	MessageTypeWeatherUpdate = "WEATHER_UPDATE"
	MessageTypeError         = "ERROR"
	MessageTypePong          = "PONG"
)

// Inbound commands.
const (
	CommandStartMusic   = "START_MUSIC_UPDATES"
	CommandStopMusic    = "STOP_MUSIC_UPDATES"
	CommandStartWeather = "START_WEATHER_UPDATES"
	CommandStopWeather  = "STOP_WEATHER_UPDATES"
	CommandPing         = "PING"
)

// Error codes carried in ERROR payloads.
const (
	ErrCodeUnknownCommand = "UNKNOWN_COMMAND"
	ErrCodeBadMessage     = "BAD_MESSAGE"
	ErrCodeLocationNotSet = "LOCATION_NOT_SET"
	ErrCodeUnavailable    = "UNAVAILABLE"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// StatePayload is sent once when a connection opens.
type StatePayload struct {
	User           models.UserView `json:"user"`
	MusicUpdates   bool            `json:"music_updates"`
	WeatherUpdates bool            `json:"weather_updates"`
}

// ErrorPayload describes a rejected command.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
}

type inboundMessage struct {
	Type string `json:"type"`
}
