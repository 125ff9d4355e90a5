// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"
	"time"
)

// HealthLive reports that the process is up. It checks nothing else.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when the user store answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.deps.Store != nil && h.deps.Store.Ping(r.Context()) == nil

	status := http.StatusOK
	if !dbConnected {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, &APIResponse{
		Success: dbConnected,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"ready_to_serve":     dbConnected,
			"websocket_clients":  h.clientCount(),
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Meta: newMeta(r),
	})
}

func (h *Handler) clientCount() int {
	if h.deps.Hub == nil {
		return 0
	}
	return h.deps.Hub.ClientCount()
}
