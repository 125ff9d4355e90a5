// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/models"
)

// AuthorizeResponse carries the URL the client opens to link Spotify.
type AuthorizeResponse struct {
	URL string `json:"url"`
}

// ConnectionResponse reports the Spotify link state after a change.
type ConnectionResponse struct {
	Connected bool `json:"connected"`
}

func (h *Handler) spotifyEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Spotify == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeSpotifyDisabled, "Spotify integration is not configured", nil)
		return false
	}
	return true
}

// SpotifyAuthorize handles GET /api/v1/integrations/spotify/authorize.
func (h *Handler) SpotifyAuthorize(w http.ResponseWriter, r *http.Request) {
	if !h.spotifyEnabled(w, r) {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	state, err := h.deps.JWT.GenerateStateToken(claims.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create authorization state", err)
		return
	}
	respondJSON(w, r, http.StatusOK, AuthorizeResponse{URL: h.deps.Spotify.AuthCodeURL(state)})
}

// SpotifyCallback handles GET /api/v1/integrations/spotify/callback. It is
// reached by browser redirect without a bearer token; the signed state
// identifies the user.
func (h *Handler) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	if !h.spotifyEnabled(w, r) {
		return
	}
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Spotify authorization was not granted: "+sanitizeLogValue(reason), nil)
		return
	}

	userID, err := h.deps.JWT.ValidateStateToken(q.Get("state"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidState, "Invalid or expired authorization state", err)
		return
	}
	code := q.Get("code")
	if code == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Missing authorization code", nil)
		return
	}

	ctx := logging.ContextWithUserID(r.Context(), userID)
	cred, err := h.deps.Spotify.Exchange(ctx, code)
	if err != nil {
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to exchange authorization code", err)
		return
	}

	h.changeSpotifyLink(w, r.WithContext(ctx), userID, func(ctx context.Context) error {
		return h.deps.Store.SaveCredential(ctx, userID, cred)
	})
}

// SpotifyDisconnect handles DELETE /api/v1/integrations/spotify. The music
// engine notices the missing credential on its next tick.
func (h *Handler) SpotifyDisconnect(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	h.changeSpotifyLink(w, r, claims.UserID, func(ctx context.Context) error {
		err := h.deps.Store.DeleteCredential(ctx, claims.UserID)
		if errors.Is(err, models.ErrCredentialNotFound) {
			return nil
		}
		return err
	})
}

// changeSpotifyLink applies change and publishes the profile update if the
// connected flag flipped.
func (h *Handler) changeSpotifyLink(w http.ResponseWriter, r *http.Request, userID string, change func(context.Context) error) {
	ctx := r.Context()
	before, err := h.Profile(ctx, userID)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	if err := change(ctx); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			h.respondUserError(w, r, err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to update Spotify link", err)
		return
	}
	after, err := h.Profile(ctx, userID)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	if before.SpotifyConnected != after.SpotifyConnected {
		h.publishProfileChange(ctx, before, after)
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Bool("connected", after.SpotifyConnected).
		Msg("Spotify link changed")
	respondJSON(w, r, http.StatusOK, ConnectionResponse{Connected: after.SpotifyConnected})
}
