// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/models"
)

const maxPasswordBytes = 72

// RegisterRequest creates a local account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=64"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	User      models.UserView `json:"user"`
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// The validator counts runes; bcrypt's limit is in bytes.
	if len(req.Password) > maxPasswordBytes {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "password must be at most 72 bytes", nil)
		return
	}

	hash, err := h.deps.Hasher.Hash(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Settings:     models.DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.deps.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "Username already taken", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to create account", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("Account created")
	h.respondToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.deps.Store.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, models.ErrUserNotFound) {
		respondError(w, r, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Login failed", err)
		return
	}
	if err := h.deps.Hasher.Check(user.PasswordHash, req.Password); err != nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password", nil)
		return
	}

	h.respondToken(w, r, http.StatusOK, user)
}

func (h *Handler) respondToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.deps.JWT.GenerateToken(user.ID, user.Username, h.deps.JWT.RoleFor(user.Username))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to issue token", err)
		return
	}
	connected, err := h.deps.Store.HasCredential(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load profile", err)
		return
	}
	respondJSON(w, r, status, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      user.View(connected),
	})
}
