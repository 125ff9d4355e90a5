// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import (
	"context"
	"errors"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/widgets"
)

func (c *Client) handleCommand(cmd string) {
	switch cmd {
	case CommandStartMusic:
		c.startMusic()
	case CommandStopMusic:
		c.mu.Lock()
		on := c.music
		c.music = false
		delete(c.delivered, events.KindMusicStateUpdated)
		c.mu.Unlock()
		if on {
			c.stopMusic()
		}
	case CommandStartWeather:
		c.startWeather()
	case CommandStopWeather:
		c.mu.Lock()
		on := c.weather
		c.weather = false
		delete(c.delivered, events.KindWeatherStateUpdated)
		c.mu.Unlock()
		if on {
			c.stopWeather()
		}
	case CommandPing:
		c.Send(Message{Type: MessageTypePong})
	default:
		c.sendError(ErrCodeUnknownCommand, "unknown command", cmd)
	}
}

// startMusic subscribes the user to the music engine. Starting again while
// already started restarts a stopped key and replays the cached snapshot
// without adding a second reference.
func (c *Client) startMusic() {
	music := c.hub.deps.Music
	c.mu.Lock()
	on := c.music
	c.music = true
	delete(c.delivered, events.KindMusicStateUpdated)
	c.mu.Unlock()

	// The engine drops every reference when the user disconnects Spotify.
	refresh := on && music.IsSubscribed(c.userID, c.userID)
	if err := music.Subscribe(c.userID, c.userID); err != nil {
		c.failStart(CommandStartMusic, err, func() { c.music = on })
		return
	}
	if refresh {
		_ = music.Unsubscribe(c.userID, c.userID)
	}
}

func (c *Client) stopMusic() {
	if err := c.hub.deps.Music.Unsubscribe(c.userID, c.userID); err != nil {
		c.log.Warn().Err(err).Msg("music unsubscribe failed")
	}
}

// startWeather subscribes the user to the weather key of their saved
// location. The location is read fresh so a START after a move uses the new
// key; any reference this connection held on another key is released.
func (c *Client) startWeather() {
	loc, err := c.currentLocation(c.ctx)
	if err != nil {
		if errors.Is(err, models.ErrLocationNotSet) {
			c.sendError(ErrCodeLocationNotSet, "set a location before starting weather updates", CommandStartWeather)
			return
		}
		c.failStart(CommandStartWeather, err, nil)
		return
	}
	key := widgets.LocationKeyFor(&loc, c.hub.deps.LocationPrecision)

	weather := c.hub.deps.Weather
	c.mu.Lock()
	on := c.weather
	c.weather = true
	delete(c.delivered, events.KindWeatherStateUpdated)
	c.mu.Unlock()

	previous := ""
	if on {
		previous = c.weatherKey(key)
	}
	if err := weather.Subscribe(key, c.userID); err != nil {
		c.failStart(CommandStartWeather, err, func() { c.weather = on })
		return
	}
	if previous != "" {
		_ = weather.Unsubscribe(previous, c.userID)
	}
}

func (c *Client) stopWeather() {
	// The connection context may already be cancelled on close.
	loc, err := c.currentLocation(context.Background())
	preferred := ""
	if err == nil {
		preferred = widgets.LocationKeyFor(&loc, c.hub.deps.LocationPrecision)
	}
	key := c.weatherKey(preferred)
	if key == "" {
		return
	}
	if err := c.hub.deps.Weather.Unsubscribe(key, c.userID); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("weather unsubscribe failed")
	}
}

// weatherKey returns the key the user is registered under, preferring
// preferred when the user holds references on more than one.
func (c *Client) weatherKey(preferred string) string {
	keys := c.hub.deps.Weather.KeysOf(c.userID)
	for _, k := range keys {
		if k == preferred {
			return k
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func (c *Client) currentLocation(ctx context.Context) (models.Location, error) {
	view, err := c.hub.deps.Profiles.Profile(ctx, c.userID)
	if err != nil {
		return models.Location{}, err
	}
	c.setUser(view)
	if view.Location == nil {
		return models.Location{}, models.ErrLocationNotSet
	}
	return *view.Location, nil
}

// failStart reports a failed START command and restores the flag under lock.
func (c *Client) failStart(cmd string, err error, restore func()) {
	if restore != nil {
		c.mu.Lock()
		restore()
		c.mu.Unlock()
	}
	c.log.Warn().Err(err).Str("command", cmd).Msg("command failed")
	c.sendError(ErrCodeUnavailable, "updates are unavailable right now", cmd)
}

func (c *Client) sendError(code, msg, cmd string) {
	c.Send(Message{Type: MessageTypeError, Payload: ErrorPayload{Code: code, Message: msg, Command: cmd}})
}
