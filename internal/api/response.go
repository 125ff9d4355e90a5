// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = validation.ErrCodeValidation
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeStorageDisabled    = "STORAGE_DISABLED"
	ErrCodeSpotifyDisabled    = "SPOTIFY_DISABLED"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIResponse is the standardized response wrapper for all API endpoints.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (omitted on success)
	Error *APIError `json:"error,omitempty"`

	// Meta contains response metadata
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// sanitizeLogValue removes control characters from strings to prevent log injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// writeJSON marshals response and writes it with status.
func writeJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondJSON sends a successful response.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// respondError sends an error response. err is logged, never returned to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("code", sanitizeLogValue(code)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	meta := newMeta(r)
	writeJSON(w, status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// respondValidationError sends a 400 with the validator's details.
func respondValidationError(w http.ResponseWriter, r *http.Request, apiErr *validation.APIError) {
	meta := newMeta(r)
	writeJSON(w, http.StatusBadRequest, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			Details:   apiErr.Details,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// writeAuthError adapts respondError for the auth middleware.
func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondError(w, r, status, code, message, nil)
}

func newMeta(r *http.Request) *APIMeta {
	return &APIMeta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}
