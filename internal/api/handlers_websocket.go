// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/websocket"
)

// getUpgrader creates a WebSocket upgrader with origin checking and a handshake timeout.
func (h *Handler) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browsers always send Origin, so a missing header
// is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.deps.Origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket handles GET /api/v1/ws. The connection belongs to the
// authenticated user for its whole life.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if h.deps.Hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Live updates are unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.deps.Hub, conn, claims.UserID)
	if err := client.Start(); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to start websocket client")
		_ = conn.WriteControl(gorillaws.CloseMessage,
			gorillaws.FormatCloseMessage(gorillaws.CloseInternalServerErr, "unavailable"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
