// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
	"github.com/tomtom215/hearth/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Engine is the subscription surface of a poll engine.
type Engine interface {
	Subscribe(key, subscriber string) error
	Unsubscribe(key, subscriber string) error
	IsSubscribed(key, subscriber string) bool
	KeysOf(subscriber string) []string
}

// EventSubscriber subscribes to the event bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, kinds ...events.Kind) (<-chan events.Event, error)
}

// ProfileLoader returns the current public view of a user.
type ProfileLoader interface {
	Profile(ctx context.Context, userID string) (models.UserView, error)
}

// ProfileFunc adapts a function to ProfileLoader.
type ProfileFunc func(ctx context.Context, userID string) (models.UserView, error)

// Profile implements ProfileLoader.
func (f ProfileFunc) Profile(ctx context.Context, userID string) (models.UserView, error) {
	return f(ctx, userID)
}

// Deps are the collaborators every client needs.
type Deps struct {
	Bus               EventSubscriber
	Music             Engine
	Weather           Engine
	Profiles          ProfileLoader
	LocationPrecision int
}

// Hub maintains the set of active clients.
type Hub struct {
	deps       Deps
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a hub. Serve must be running for clients to register.
func NewHub(deps Deps) *Hub {
	return &Hub{
		deps:       deps,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Serve runs the hub until ctx is done, then closes every client.
//
// Client lifecycle events are handled before checking for new work so that
// the client set is consistent when shutdown closes it.
func (h *Hub) Serve(ctx context.Context) error {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnections.Set(float64(total))
			logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnections.Set(float64(total))
			logging.Info().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client disconnected")
		}
	}
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Register adds a client. It reports false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ClientsForUser returns the number of connections a user has open.
func (h *Hub) ClientsForUser(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.userID == userID {
			n++
		}
	}
	return n
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes every client in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		client.closeSend()
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}
