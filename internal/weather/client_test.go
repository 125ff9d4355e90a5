// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package weather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/upstream"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "key-1"
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 0
	return NewClient(cfg)
}

func TestGetCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "52.5" || q.Get("lon") != "13.4" {
			t.Errorf("Unexpected coordinates %v", q)
		}
		if q.Get("appid") != "key-1" || q.Get("units") != "metric" {
			t.Errorf("Unexpected query %v", q)
		}
		_, _ = io.WriteString(w, `{
			"name": "Berlin",
			"dt": 1700000000,
			"weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
			"main": {"temp": 7.5, "feels_like": 4.2, "humidity": 81},
			"wind": {"speed": 5.1}
		}`)
	})

	snap, err := c.GetCurrent(context.Background(), 52.5, 13.4)
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if snap.Place != "Berlin" || snap.Condition != "Clouds" || snap.Icon != "04d" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if snap.Temperature != 7.5 || snap.FeelsLike != 4.2 || snap.Humidity != 81 || snap.WindSpeed != 5.1 {
		t.Errorf("Measurements not decoded: %+v", snap)
	}
	if snap.Latitude != 52.5 || snap.Longitude != 13.4 || snap.Units != "metric" {
		t.Errorf("Request parameters not recorded: %+v", snap)
	}
	if !snap.ObservedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ObservedAt = %v", snap.ObservedAt)
	}
}

func TestGetCurrentStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   string
		wantKind upstream.Kind
	}{
		{"bad key", http.StatusUnauthorized, "", upstream.KindUnauthorized},
		{"quota", http.StatusTooManyRequests, "60", upstream.KindRateLimited},
		{"outage", http.StatusInternalServerError, "", upstream.KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				if tt.header != "" {
					w.Header().Set("Retry-After", tt.header)
				}
				w.WriteHeader(tt.status)
			})
			_, err := c.GetCurrent(context.Background(), 1, 2)
			if got := upstream.Classify(err).Kind; got != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestRedactKey(t *testing.T) {
	err := redactKey(&url.Error{Op: "Get", URL: "https://x/weather?appid=secret", Err: errors.New("refused")})
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("API key leaked: %v", err)
	}
}

func TestGetCurrentCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetCurrent(ctx, 1, 2)
	if !upstream.IsKind(err, upstream.KindTransient) {
		t.Errorf("Expected transient error, got %v", err)
	}
}
