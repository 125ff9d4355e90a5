// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
	"github.com/tomtom215/hearth/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// clientIDCounter hands out monotonically increasing client IDs.
var clientIDCounter atomic.Uint64

// Client is one authenticated connection.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	userID string
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	user     models.UserView
	music    bool
	weather  bool
	released bool

	// delivered holds, per widget kind, the key of the last update sent
	// since that widget was started.
	delivered map[events.Kind]string
}

// NewClient creates a client for userID.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := clientIDCounter.Add(1)
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		userID: userID,
		log:    logging.With().Str("component", "websocket-client").Str("user_id", userID).Uint64("client_id", id).Logger(),
		ctx:    ctx,
		cancel: cancel,

		delivered: make(map[events.Kind]string),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// UserID returns the authenticated user.
func (c *Client) UserID() string {
	return c.userID
}

// Start registers the client, sends the STATE message, and starts its
// goroutines. On error the caller still owns the connection.
func (c *Client) Start() error {
	view, err := c.hub.deps.Profiles.Profile(c.ctx, c.userID)
	if err != nil {
		c.cancel()
		return fmt.Errorf("load profile: %w", err)
	}
	c.setUser(view)

	evs, err := c.hub.deps.Bus.Subscribe(c.ctx, events.AllKinds()...)
	if err != nil {
		c.cancel()
		return fmt.Errorf("subscribe to events: %w", err)
	}
	if !c.hub.Register(c) {
		c.cancel()
		return fmt.Errorf("websocket hub stopped")
	}

	c.Send(Message{Type: MessageTypeState, Payload: c.state()})
	go NewRouter(c).Run(evs)
	go c.writePump()
	go c.readPump()
	return nil
}

// Send queues a message without blocking. It reports whether the message was
// queued; a full or closed queue drops it.
func (c *Client) Send(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		metrics.WSMessagesDropped.Inc()
		c.log.Warn().Str("type", msg.Type).Msg("send queue full, dropping message")
		return false
	}
}

// Wants reports whether the connection asked for updates of kind.
func (c *Client) Wants(kind events.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case events.KindMusicStateUpdated:
		return c.music
	case events.KindWeatherStateUpdated:
		return c.weather
	default:
		return true
	}
}

// MarkDelivered records that an update for key is being sent and reports
// whether one for the same key was already sent since the widget started.
func (c *Client) MarkDelivered(kind events.Kind, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := c.delivered[kind] == key
	c.delivered[kind] = key
	return seen
}

// SetUser replaces the cached profile view.
func (c *Client) SetUser(view models.UserView) {
	c.setUser(view)
}

func (c *Client) setUser(view models.UserView) {
	c.mu.Lock()
	c.user = view
	c.mu.Unlock()
}

func (c *Client) state() StatePayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StatePayload{User: c.user, MusicUpdates: c.music, WeatherUpdates: c.weather}
}

// closeSend closes the send queue. Called by the hub.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.release()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(ErrCodeBadMessage, "message is not valid JSON", "")
			continue
		}
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		c.handleCommand(msg.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.log.Error().Err(err).Str("type", message.Type).Msg("failed to encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug().Err(err).Msg("failed to write message")
				return
			}
			metrics.WSMessagesSent.WithLabelValues(message.Type).Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// release stops the router and drops every subscription this connection took.
func (c *Client) release() {
	c.cancel()

	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	music, weather := c.music, c.weather
	c.music, c.weather = false, false
	c.mu.Unlock()

	if music {
		c.stopMusic()
	}
	if weather {
		c.stopWeather()
	}
	c.log.Debug().Bool("music", music).Bool("weather", weather).Msg("connection released")
}
