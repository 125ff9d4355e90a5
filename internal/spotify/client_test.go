// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package spotify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/upstream"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.ClientID = "client"
	cfg.ClientSecret = "secret"
	cfg.RedirectURL = "http://localhost/callback"
	cfg.APIBaseURL = srv.URL + "/v1"
	cfg.TokenURL = srv.URL + "/api/token"
	cfg.AuthURL = srv.URL + "/authorize"
	cfg.RequestsPerSecond = 0
	return NewClient(cfg)
}

const playingBody = `{
  "is_playing": true,
  "progress_ms": 42000,
  "device": {"name": "Kitchen"},
  "item": {
    "id": "song-a",
    "name": "Song A",
    "duration_ms": 180000,
    "artists": [{"name": "Artist One"}, {"name": "Artist Two"}],
    "album": {"name": "Album", "images": [{"url": "https://img/large", "width": 640, "height": 640}]}
  }
}`

func TestGetCurrentlyPlaying(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/me/player/currently-playing" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, playingBody)
	}))

	snap, err := c.GetCurrentlyPlaying(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("GetCurrentlyPlaying failed: %v", err)
	}
	if !snap.Playing || snap.ItemID() != "song-a" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if snap.Device != "Kitchen" || snap.ProgressMs != 42000 {
		t.Errorf("Device/progress not decoded: %+v", snap)
	}
	if got := strings.Join(snap.Item.Artists, ","); got != "Artist One,Artist Two" {
		t.Errorf("Artists = %q", got)
	}
	if snap.Item.ImageURL != "https://img/large" || snap.Item.Album != "Album" {
		t.Errorf("Album not decoded: %+v", snap.Item)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestGetCurrentlyPlayingNoContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	_, err := c.GetCurrentlyPlaying(context.Background(), "access-1")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("Expected ErrNoContent, got %v", err)
	}
}

func TestIdlePollsKeepBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 15 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, playingBody)
	}))

	for i := 0; i < 15; i++ {
		if _, err := c.GetCurrentlyPlaying(context.Background(), "access-1"); !errors.Is(err, ErrNoContent) {
			t.Fatalf("idle poll %d: expected ErrNoContent, got %v", i, err)
		}
	}
	if got := c.breaker.State(); got != "closed" {
		t.Fatalf("breaker state after idle polls = %q, want closed", got)
	}

	snap, err := c.GetCurrentlyPlaying(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("GetCurrentlyPlaying after idle polls failed: %v", err)
	}
	if !snap.Playing || snap.ItemID() != "song-a" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestGetCurrentlyPlayingStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantKind   upstream.Kind
		wantDelay  time.Duration
	}{
		{"unauthorized", http.StatusUnauthorized, "", upstream.KindUnauthorized, 0},
		{"forbidden", http.StatusForbidden, "", upstream.KindUnauthorized, 0},
		{"rate limited", http.StatusTooManyRequests, "5", upstream.KindRateLimited, 5 * time.Second},
		{"server error", http.StatusBadGateway, "", upstream.KindTransient, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
			}))

			_, err := c.GetCurrentlyPlaying(context.Background(), "access-1")
			ue := upstream.Classify(err)
			if ue.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (err=%v)", ue.Kind, tt.wantKind, err)
			}
			if tt.wantDelay > 0 && ue.RetryAfter != tt.wantDelay {
				t.Errorf("RetryAfter = %v, want %v", ue.RetryAfter, tt.wantDelay)
			}
		})
	}
}

func TestGetCurrentlyPlayingIdleItem(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"is_playing": false, "item": null}`)
	}))

	snap, err := c.GetCurrentlyPlaying(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("GetCurrentlyPlaying failed: %v", err)
	}
	if !snap.Idle() || snap.Playing {
		t.Errorf("Expected idle snapshot, got %+v", snap)
	}
}

func TestRefreshCredential(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "refresh-1" {
			t.Errorf("Unexpected form %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"access-2","token_type":"Bearer","expires_in":3600,"scope":"user-read-currently-playing"}`)
	}))

	cred, err := c.RefreshCredential(context.Background(), "refresh-1")
	if err != nil {
		t.Fatalf("RefreshCredential failed: %v", err)
	}
	if cred.AccessToken != "access-2" {
		t.Errorf("AccessToken = %q", cred.AccessToken)
	}
	if cred.RefreshToken != "refresh-1" {
		t.Errorf("RefreshToken should be kept when not rotated, got %q", cred.RefreshToken)
	}
	if cred.Scope != "user-read-currently-playing" {
		t.Errorf("Scope = %q", cred.Scope)
	}
	if cred.Expired(time.Now()) {
		t.Error("Fresh credential should not be expired")
	}
}

func TestRefreshCredentialRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Refresh token revoked"}`)
	}))

	_, err := c.RefreshCredential(context.Background(), "revoked")
	if !errors.Is(err, upstream.ErrCredentialRefreshFailed) {
		t.Fatalf("Expected ErrCredentialRefreshFailed, got %v", err)
	}
	if !upstream.IsKind(err, upstream.KindUnauthorized) {
		t.Error("Rejected refresh should classify as unauthorized")
	}
}

func TestRefreshCredentialServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.RefreshCredential(context.Background(), "refresh-1")
	if err == nil {
		t.Fatal("Expected error")
	}
	if errors.Is(err, upstream.ErrCredentialRefreshFailed) {
		t.Error("A 503 from the token endpoint is not a rejected credential")
	}
	if !upstream.IsKind(err, upstream.KindTransient) {
		t.Errorf("Expected transient, got %v", err)
	}
}

func TestRefreshCredentialEmptyToken(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	if _, err := c.RefreshCredential(context.Background(), ""); !errors.Is(err, upstream.ErrCredentialRefreshFailed) {
		t.Fatalf("Expected ErrCredentialRefreshFailed, got %v", err)
	}
}

func TestExchangeAndAuthCodeURL(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "code-1" {
			t.Errorf("code = %q", r.Form.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"a","refresh_token":"r","token_type":"Bearer","expires_in":3600}`)
	}))

	u := c.AuthCodeURL("state-xyz")
	if !strings.Contains(u, "state=state-xyz") || !strings.Contains(u, "client_id=client") {
		t.Errorf("Unexpected auth URL %q", u)
	}

	cred, err := c.Exchange(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if cred.AccessToken != "a" || cred.RefreshToken != "r" {
		t.Errorf("Unexpected credential %+v", cred)
	}
}
