// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"context"
	"fmt"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/poll"
)

// WeatherEngine polls current conditions keyed by location key.
type WeatherEngine = poll.Engine[models.WeatherSnapshot]

// WeatherClient is the weather upstream.
type WeatherClient interface {
	GetCurrent(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error)
}

// WeatherSource fetches conditions for a location key.
type WeatherSource struct {
	client WeatherClient
}

// NewWeatherSource creates a source.
func NewWeatherSource(client WeatherClient) *WeatherSource {
	return &WeatherSource{client: client}
}

// Fetch implements poll.Fetcher. A malformed key can never be polled and is
// reported as a gone target.
func (s *WeatherSource) Fetch(ctx context.Context, key string) (models.WeatherSnapshot, error) {
	lat, lon, err := ParseLocationKey(key)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: %w", poll.ErrTargetGone, err)
	}
	return s.client.GetCurrent(ctx, lat, lon)
}

// NewWeatherEngine creates the weather engine publishing WeatherStateUpdated events.
func NewWeatherEngine(cfg EngineConfig, source poll.Fetcher[models.WeatherSnapshot], bus EventPublisher) *WeatherEngine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultWeatherInterval
	}
	publish := poll.PublishFunc[models.WeatherSnapshot](func(ctx context.Context, u poll.Update[models.WeatherSnapshot]) error {
		return bus.Publish(ctx, events.WeatherStateUpdated{
			LocationKey: u.Key,
			Subscribers: u.Subscribers,
			Snapshot:    u.Snapshot,
			Direct:      u.Direct,
		})
	})
	return poll.NewEngine[models.WeatherSnapshot](poll.Config{
		Name:        "weather",
		Interval:    cfg.Interval,
		PollTimeout: cfg.PollTimeout,
		Clock:       cfg.Clock,
	}, source, WeatherChanged, publish)
}
