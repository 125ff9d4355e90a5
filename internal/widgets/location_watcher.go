// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/logging"
)

// EventSubscriber subscribes to the event bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, kinds ...events.Kind) (<-chan events.Event, error)
}

// SubscriptionMover moves a subscriber between weather keys.
type SubscriptionMover interface {
	Move(from, to, subscriber string) error
	Unsubscribe(key, subscriber string) error
	IsSubscribed(key, subscriber string) bool
}

// LocationWatcher is the single process-wide handler that follows location
// changes: when a user's saved location maps to a different weather key,
// their weather subscription moves with it. Connections only refresh their
// cached profile.
type LocationWatcher struct {
	bus       EventSubscriber
	weather   SubscriptionMover
	precision int
	log       zerolog.Logger
}

// NewLocationWatcher creates a watcher using the given coordinate precision.
func NewLocationWatcher(bus EventSubscriber, weather SubscriptionMover, precision int) *LocationWatcher {
	return &LocationWatcher{
		bus:       bus,
		weather:   weather,
		precision: precision,
		log:       logging.WithComponent("location-watcher"),
	}
}

// Serve handles profile events until ctx is done.
func (w *LocationWatcher) Serve(ctx context.Context) error {
	ch, err := w.bus.Subscribe(ctx, events.KindUserProfileUpdated)
	if err != nil {
		return err
	}
	for ev := range ch {
		if e, ok := ev.(events.UserProfileUpdated); ok {
			w.Handle(e)
		}
	}
	return ctx.Err()
}

// String identifies the watcher in supervisor logs.
func (w *LocationWatcher) String() string {
	return "location-watcher"
}

// Handle applies one profile change.
func (w *LocationWatcher) Handle(e events.UserProfileUpdated) {
	oldKey := LocationKeyFor(e.Previous.Location, w.precision)
	newKey := LocationKeyFor(e.Current.Location, w.precision)
	if oldKey == newKey || oldKey == "" {
		return
	}
	if !w.weather.IsSubscribed(oldKey, e.UserID) {
		return
	}

	var err error
	if newKey == "" {
		err = w.weather.Unsubscribe(oldKey, e.UserID)
	} else {
		err = w.weather.Move(oldKey, newKey, e.UserID)
	}
	if err != nil {
		w.log.Warn().Err(err).Str("user_id", e.UserID).Str("from", oldKey).Str("to", newKey).
			Msg("Failed to move weather subscription")
		return
	}
	w.log.Info().Str("user_id", e.UserID).Str("from", oldKey).Str("to", newKey).Msg("Weather subscription follows new location")
}
