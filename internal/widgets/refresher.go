// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
	"github.com/tomtom215/hearth/internal/models"
	"golang.org/x/sync/singleflight"
)

// CredentialStore reads and writes Spotify credentials.
type CredentialStore interface {
	GetCredential(ctx context.Context, userID string) (models.Credential, error)
	SaveCredential(ctx context.Context, userID string, cred models.Credential) error
}

// TokenRefresher exchanges a refresh token for a new credential.
type TokenRefresher interface {
	RefreshCredential(ctx context.Context, refreshToken string) (models.Credential, error)
}

// DefaultRefreshTimeout bounds one shared refresh.
const DefaultRefreshTimeout = 15 * time.Second

// CredentialRefresher refreshes and persists credentials. Concurrent
// refreshes for the same user share one upstream call.
type CredentialRefresher struct {
	store    CredentialStore
	upstream TokenRefresher
	clock    clockwork.Clock
	group    singleflight.Group
	timeout  time.Duration
}

// NewCredentialRefresher creates a refresher. A nil clock uses the real clock.
func NewCredentialRefresher(store CredentialStore, upstream TokenRefresher, clock clockwork.Clock) *CredentialRefresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CredentialRefresher{store: store, upstream: upstream, clock: clock, timeout: DefaultRefreshTimeout}
}

// Refresh exchanges cred's refresh token and saves the result for userID.
// Errors wrap upstream.ErrCredentialRefreshFailed when the grant was rejected.
// A caller whose ctx ends stops waiting; the shared refresh carries on for
// the others.
func (r *CredentialRefresher) Refresh(ctx context.Context, userID string, cred models.Credential) (models.Credential, error) {
	ch := r.group.DoChan(userID, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		fresh, err := r.upstream.RefreshCredential(rctx, cred.RefreshToken)
		if err != nil {
			metrics.CredentialRefreshes.WithLabelValues("failure").Inc()
			return models.Credential{}, err
		}
		if err := r.store.SaveCredential(rctx, userID, fresh); err != nil {
			metrics.CredentialRefreshes.WithLabelValues("failure").Inc()
			return models.Credential{}, fmt.Errorf("persist refreshed credential: %w", err)
		}
		metrics.CredentialRefreshes.WithLabelValues("success").Inc()
		logging.Debug().Str("user_id", userID).Time("expiry", fresh.Expiry).Msg("Spotify credential refreshed")
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return models.Credential{}, fmt.Errorf("wait for credential refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			logging.Debug().Str("user_id", userID).Msg("Joined in-flight credential refresh")
		}
		if res.Err != nil {
			return models.Credential{}, res.Err
		}
		return res.Val.(models.Credential), nil
	}
}

// Current loads the stored credential and refreshes it if it has expired.
func (r *CredentialRefresher) Current(ctx context.Context, userID string) (models.Credential, error) {
	cred, err := r.store.GetCredential(ctx, userID)
	if err != nil {
		return models.Credential{}, err
	}
	if !cred.Expired(r.clock.Now()) {
		return cred, nil
	}
	return r.Refresh(ctx, userID, cred)
}
