// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/poll"
	"github.com/tomtom215/hearth/internal/spotify"
	"github.com/tomtom215/hearth/internal/upstream"
)

// Default poll intervals.
const (
	DefaultMusicInterval   = 3 * time.Second
	DefaultWeatherInterval = 10 * time.Minute
)

// MusicEngine polls playback state keyed by user ID.
type MusicEngine = poll.Engine[models.MusicSnapshot]

// MusicClient is the playback upstream.
type MusicClient interface {
	GetCurrentlyPlaying(ctx context.Context, accessToken string) (models.MusicSnapshot, error)
}

// EventPublisher publishes onto the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// MusicSource fetches one user's playback state.
type MusicSource struct {
	store     CredentialStore
	refresher *CredentialRefresher
	client    MusicClient
	clock     clockwork.Clock
}

// NewMusicSource creates a source. A nil clock uses the real clock.
func NewMusicSource(store CredentialStore, refresher *CredentialRefresher, client MusicClient, clock clockwork.Clock) *MusicSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MusicSource{store: store, refresher: refresher, client: client, clock: clock}
}

// Fetch implements poll.Fetcher. A user without a credential is a gone
// target. An expired credential is refreshed first, and a credential the
// upstream rejects is refreshed once and retried before giving up. When
// nothing is loaded in the player the result is an idle snapshot.
func (s *MusicSource) Fetch(ctx context.Context, userID string) (models.MusicSnapshot, error) {
	cred, err := s.store.GetCredential(ctx, userID)
	switch {
	case errors.Is(err, models.ErrCredentialNotFound), errors.Is(err, models.ErrUserNotFound):
		return models.MusicSnapshot{}, fmt.Errorf("%w: no spotify credential for user %s", poll.ErrTargetGone, userID)
	case err != nil:
		return models.MusicSnapshot{}, upstream.Transient(fmt.Errorf("load credential: %w", err))
	}

	refreshed := false
	if cred.Expired(s.clock.Now()) {
		if cred, err = s.refresher.Refresh(ctx, userID, cred); err != nil {
			return models.MusicSnapshot{}, err
		}
		refreshed = true
	}

	snapshot, err := s.client.GetCurrentlyPlaying(ctx, cred.AccessToken)
	if !refreshed && cred.RefreshToken != "" && upstream.IsKind(err, upstream.KindUnauthorized) {
		if cred, err = s.refresher.Refresh(ctx, userID, cred); err != nil {
			return models.MusicSnapshot{}, err
		}
		snapshot, err = s.client.GetCurrentlyPlaying(ctx, cred.AccessToken)
	}

	if errors.Is(err, spotify.ErrNoContent) {
		return models.MusicSnapshot{FetchedAt: s.clock.Now()}, nil
	}
	return snapshot, err
}

// EngineConfig configures one widget engine.
type EngineConfig struct {
	Interval    time.Duration
	PollTimeout time.Duration
	Clock       clockwork.Clock
}

// NewMusicEngine creates the music engine publishing MusicStateUpdated events.
func NewMusicEngine(cfg EngineConfig, source poll.Fetcher[models.MusicSnapshot], bus EventPublisher) *MusicEngine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultMusicInterval
	}
	publish := poll.PublishFunc[models.MusicSnapshot](func(ctx context.Context, u poll.Update[models.MusicSnapshot]) error {
		return bus.Publish(ctx, events.MusicStateUpdated{
			UserID:      u.Key,
			Subscribers: u.Subscribers,
			Snapshot:    u.Snapshot,
			Direct:      u.Direct,
		})
	})
	return poll.NewEngine[models.MusicSnapshot](poll.Config{
		Name:        "music",
		Interval:    cfg.Interval,
		PollTimeout: cfg.PollTimeout,
		Clock:       cfg.Clock,
	}, source, MusicChanged, publish)
}
