// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/hearth/internal/models"
)

// LocationRequest sets the display location.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Name      string   `json:"name" validate:"omitempty,max=100"`
}

// SettingsRequest replaces the display settings.
type SettingsRequest struct {
	Units    string `json:"units" validate:"required,oneof=metric imperial"`
	Clock24h bool   `json:"clock_24h"`
	Theme    string `json:"theme" validate:"required,oneof=dark light auto"`
}

// GetMe handles GET /api/v1/users/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	view, err := h.Profile(r.Context(), claims.UserID)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

// UpdateLocation handles PUT /api/v1/users/me/location.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req LocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loc := models.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Name: req.Name}
	prev, cur, err := h.deps.Store.UpdateLocation(r.Context(), claims.UserID, loc)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	h.respondProfileChange(w, r, prev, cur)
}

// UpdateSettings handles PUT /api/v1/users/me/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := models.Settings{Units: req.Units, Clock24h: req.Clock24h, Theme: req.Theme}
	prev, cur, err := h.deps.Store.UpdateSettings(r.Context(), claims.UserID, settings)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	h.respondProfileChange(w, r, prev, cur)
}

// respondProfileChange publishes the before/after views and returns the new one.
func (h *Handler) respondProfileChange(w http.ResponseWriter, r *http.Request, prev, cur *models.User) {
	connected, err := h.deps.Store.HasCredential(r.Context(), cur.ID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile", err)
		return
	}
	prevView, curView := prev.View(connected), cur.View(connected)
	h.publishProfileChange(r.Context(), prevView, curView)
	respondJSON(w, r, http.StatusOK, curView)
}

func (h *Handler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrUserNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile", err)
}
