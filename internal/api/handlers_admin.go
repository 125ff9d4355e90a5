// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"

	"github.com/tomtom215/hearth/internal/poll"
)

// PollStatusResponse lists every subscribed key per engine.
type PollStatusResponse struct {
	Music            []poll.KeyStatus `json:"music"`
	Weather          []poll.KeyStatus `json:"weather"`
	WebSocketClients int              `json:"websocket_clients"`
}

// PollStatus handles GET /api/v1/admin/poll-status.
func (h *Handler) PollStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, PollStatusResponse{
		Music:            engineStatus(h.deps.Music),
		Weather:          engineStatus(h.deps.Weather),
		WebSocketClients: h.clientCount(),
	})
}

func engineStatus(engine StatusReporter) []poll.KeyStatus {
	if engine == nil {
		return []poll.KeyStatus{}
	}
	return engine.Status()
}
