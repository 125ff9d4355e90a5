// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/hearth/internal/logging"
)

type contextKey string

// ClaimsContextKey is the request context key holding *Claims.
const ClaimsContextKey contextKey = "claims"

// Error codes written by the middleware.
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

var (
	errMissingToken    = errors.New("missing token")
	errMalformedHeader = errors.New("malformed authorization header")
)

// ErrorWriter writes an error response. The API layer supplies one so that
// middleware failures use the same envelope as handler failures.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	jwt      *JWTManager
	writeErr ErrorWriter
}

// NewMiddleware creates authentication middleware. A nil writer falls back to http.Error.
func NewMiddleware(jwtManager *JWTManager, writer ErrorWriter) *Middleware {
	if writer == nil {
		writer = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{jwt: jwtManager, writeErr: writer}
}

// Authenticate requires a valid access token, from the Authorization header or,
// for websocket upgrades that cannot set headers, the token query parameter.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractToken(r)
		if err != nil {
			m.writeErr(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized: "+err.Error())
			return
		}

		claims, err := m.jwt.ValidateToken(tokenString)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected access token")
			m.writeErr(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized: invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole rejects requests whose claims do not carry role. Admins pass every check.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				m.writeErr(w, r, http.StatusForbidden, ErrCodeForbidden, "Forbidden: invalid claims")
				return
			}
			if claims.Role != role && !claims.IsAdmin() {
				m.writeErr(w, r, http.StatusForbidden, ErrCodeForbidden, "Forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads a bearer token from the Authorization header or the token query parameter.
func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errMalformedHeader
		}
		return strings.TrimSpace(token), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", errMissingToken
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
