// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/hearth/internal/auth"
)

// NewRouter builds the chi router for h.
//
// Route groups:
//   - /health/*: probes, lenient rate limit, no auth
//   - /metrics: Prometheus exposition
//   - /api/v1/auth/*: strict rate limit, no auth
//   - /api/v1/integrations/spotify/callback: no auth, the OAuth state identifies the user
//   - /api/v1/*: authenticated, per-IP rate limit, uploads also limited per user
//   - /api/v1/admin/*: authenticated, admin role
func NewRouter(h *Handler, mw *Middleware) chi.Router {
	authMW := auth.NewMiddleware(h.deps.JWT, writeAuthError)
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitAuth))
			r.Use(PrometheusMetrics)
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
			r.Get("/integrations/spotify/callback", h.SpotifyCallback)
		})

		// Upgraded connections outlive the request, so they stay out of the
		// request metrics.
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom(RateLimitWebSocket))
			r.Use(authMW.Authenticate)
			r.Get("/ws", h.WebSocket)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(authMW.Authenticate)
			r.Use(PrometheusMetrics)
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Get("/users/me", h.GetMe)
			r.Put("/users/me/location", h.UpdateLocation)
			r.Put("/users/me/settings", h.UpdateSettings)

			r.Get("/integrations/spotify/authorize", h.SpotifyAuthorize)
			r.Delete("/integrations/spotify", h.SpotifyDisconnect)

			r.Get("/files", h.ListFiles)
			r.Get("/files/{name}", h.DownloadFile)
			r.Delete("/files/{name}", h.DeleteFile)
			r.With(mw.RateLimitByUser(RateLimitUpload)).Put("/files/{name}", h.UploadFile)

			r.With(authMW.RequireRole(auth.RoleAdmin)).Get("/admin/poll-status", h.PollStatus)
		})
	})

	return r
}
