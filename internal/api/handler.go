// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/auth"
	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/files"
	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/poll"
	"github.com/tomtom215/hearth/internal/validation"
	"github.com/tomtom215/hearth/internal/websocket"
)

// maxJSONBodyBytes bounds JSON request bodies.
const maxJSONBodyBytes = 64 << 10

// UserStore is the persistence the handlers need.
type UserStore interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLocation(ctx context.Context, id string, loc models.Location) (prev, cur *models.User, err error)
	UpdateSettings(ctx context.Context, id string, settings models.Settings) (prev, cur *models.User, err error)
	SaveCredential(ctx context.Context, userID string, cred models.Credential) error
	DeleteCredential(ctx context.Context, userID string) error
	HasCredential(ctx context.Context, userID string) (bool, error)
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// SpotifyAuthorizer runs the authorization-code flow.
type SpotifyAuthorizer interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (models.Credential, error)
}

// StatusReporter reports per-key poll status.
type StatusReporter interface {
	Status() []poll.KeyStatus
}

// Deps are the handler's collaborators. Spotify and Files may be nil when the
// integration is not configured.
type Deps struct {
	Store   UserStore
	Bus     EventPublisher
	JWT     *auth.JWTManager
	Hasher  *auth.PasswordHasher
	Spotify SpotifyAuthorizer
	Files   *files.Store
	Music   StatusReporter
	Weather StatusReporter
	Hub     *websocket.Hub
	Origins []string // allowed websocket origins; "*" allows any
}

// Handler implements the HTTP endpoints.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, startTime: time.Now()}
}

// SetHub attaches the websocket hub. The hub loads profiles through the
// handler, so it is created after it.
func (h *Handler) SetHub(hub *websocket.Hub) {
	h.deps.Hub = hub
}

// Profile returns the user's public view. It also serves as the websocket
// hub's profile loader.
func (h *Handler) Profile(ctx context.Context, userID string) (models.UserView, error) {
	user, err := h.deps.Store.GetUserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	connected, err := h.deps.Store.HasCredential(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	return user.View(connected), nil
}

// publishProfileChange publishes a profile update. The change is already
// persisted, so a publish failure is logged and not returned to the client.
func (h *Handler) publishProfileChange(ctx context.Context, prev, cur models.UserView) {
	err := h.deps.Bus.Publish(ctx, events.UserProfileUpdated{
		UserID:   cur.ID,
		Previous: prev,
		Current:  cur,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", cur.ID).Msg("Failed to publish profile update")
	}
}

// decodeJSON reads a bounded JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondValidationError(w, r, verr.ToAPIError())
		return false
	}
	return true
}

// requireClaims returns the authenticated claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized", nil)
		return nil, false
	}
	return claims, true
}
