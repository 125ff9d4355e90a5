// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import (
	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
)

// Connection is the side of a client the router writes to.
type Connection interface {
	UserID() string
	Wants(kind events.Kind) bool
	MarkDelivered(kind events.Kind, key string) bool
	SetUser(view models.UserView)
	Send(msg Message) bool
}

// Router forwards bus events addressed to one connection's user. Events for
// other users are ignored. A direct replay of a cached snapshot is forwarded
// only to connections that have not yet received an update for that key, so
// one connection starting a widget does not resend it to the user's others.
type Router struct {
	conn Connection
}

// NewRouter creates a router for conn.
func NewRouter(conn Connection) *Router {
	return &Router{conn: conn}
}

// Run routes events until ch is closed.
func (r *Router) Run(ch <-chan events.Event) {
	for ev := range ch {
		r.Route(ev)
	}
}

// Route handles one event.
func (r *Router) Route(ev events.Event) {
	userID := r.conn.UserID()

	switch e := ev.(type) {
	case events.MusicStateUpdated:
		if r.forward(e.Targets(userID), events.KindMusicStateUpdated, e.UserID, e.Direct) {
			r.conn.Send(Message{Type: MessageTypeMusicUpdate, Payload: e.Snapshot})
		}
	case events.WeatherStateUpdated:
		if r.forward(e.Targets(userID), events.KindWeatherStateUpdated, e.LocationKey, e.Direct) {
			r.conn.Send(Message{Type: MessageTypeWeatherUpdate, Payload: e.Snapshot})
		}
	case events.UserProfileUpdated:
		if e.UserID == userID {
			r.conn.SetUser(e.Current)
			r.conn.Send(Message{Type: MessageTypeSettings, Payload: e.Current})
		}
	}
}

func (r *Router) forward(targeted bool, kind events.Kind, key string, direct bool) bool {
	if !targeted || !r.conn.Wants(kind) {
		return false
	}
	seen := r.conn.MarkDelivered(kind, key)
	return !direct || !seen
}
