// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package weather fetches current conditions from an OpenWeatherMap-compatible API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/upstream"
	"golang.org/x/time/rate"
)

// Config configures the client.
type Config struct {
	APIKey         string
	BaseURL        string
	Units          string
	RequestTimeout time.Duration

	// RequestsPerSecond paces calls across all locations. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the public OpenWeatherMap endpoint in metric units.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.openweathermap.org/data/2.5",
		Units:             models.UnitsMetric,
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 1,
		Burst:             10,
	}
}

// Client calls the current-weather endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *upstream.Breaker
	now        func() time.Time
}

// NewClient creates a client guarded by a circuit breaker.
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.Units == "" {
		cfg.Units = models.UnitsMetric
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		units:      cfg.Units,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
		breaker:    upstream.NewBreaker("weather-api", upstream.DefaultBreakerConfig()),
		now:        time.Now,
	}
}

// GetCurrent returns the current conditions at (lat, lon). An invalid API
// key is reported as unauthorized.
func (c *Client) GetCurrent(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.WeatherSnapshot{}, upstream.Transient(fmt.Errorf("weather request pacing: %w", err))
		}
	}
	return upstream.Execute(c.breaker, func() (models.WeatherSnapshot, error) {
		return c.current(ctx, lat, lon)
	})
}

func (c *Client) current(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", c.units)
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), http.NoBody)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.WeatherSnapshot{}, upstream.Transient(fmt.Errorf("current weather: %w", redactKey(err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.WeatherSnapshot{}, upstream.FromStatus(resp, c.now(),
			fmt.Errorf("current weather: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.WeatherSnapshot{}, upstream.Transient(fmt.Errorf("decode current weather: %w", err))
	}
	snap := payload.toSnapshot(c.now())
	snap.Latitude = lat
	snap.Longitude = lon
	snap.Units = c.units
	return snap, nil
}

// redactKey strips the query string, which carries the API key, from URL errors.
func redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
			return &url.Error{Op: ue.Op, URL: ue.URL[:i], Err: ue.Err}
		}
	}
	return err
}

type currentResponse struct {
	Name    string `json:"name"`
	Dt      int64  `json:"dt"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (r currentResponse) toSnapshot(now time.Time) models.WeatherSnapshot {
	snap := models.WeatherSnapshot{
		Place:       r.Name,
		Temperature: r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		FetchedAt:   now,
	}
	if r.Dt > 0 {
		snap.ObservedAt = time.Unix(r.Dt, 0).UTC()
	}
	if len(r.Weather) > 0 {
		snap.Condition = r.Weather[0].Main
		snap.Description = r.Weather[0].Description
		snap.Icon = r.Weather[0].Icon
	}
	return snap
}
