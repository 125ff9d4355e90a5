// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package spotify is the music upstream: the currently-playing endpoint and
// the OAuth authorization-code and refresh-token grants.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/upstream"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ErrNoContent is returned when the player has nothing loaded (HTTP 204).
var ErrNoContent = errors.New("spotify: nothing playing")

// Scopes requested during authorization.
var Scopes = []string{"user-read-currently-playing", "user-read-playback-state"}

// Config configures the client.
type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	AuthURL        string
	TokenURL       string
	APIBaseURL     string
	RequestTimeout time.Duration

	// RequestsPerSecond paces calls across all users. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the public Spotify endpoints.
func DefaultConfig() Config {
	return Config{
		AuthURL:           "https://accounts.spotify.com/authorize",
		TokenURL:          "https://accounts.spotify.com/api/token",
		APIBaseURL:        "https://api.spotify.com/v1",
		RequestTimeout:    10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             40,
	}
}

// Client calls the Spotify Web API. It holds no per-user state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	oauth      *oauth2.Config
	limiter    *rate.Limiter
	breaker    *upstream.Breaker
	now        func() time.Time
}

// NewClient creates a client guarded by a circuit breaker.
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
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
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		limiter: limiter,
		breaker: upstream.NewBreaker("spotify-api", upstream.DefaultBreakerConfig()),
		now:     time.Now,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a credential.
func (c *Client) Exchange(ctx context.Context, code string) (models.Credential, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return models.Credential{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return CredentialFromToken(tok), nil
}

// RefreshCredential exchanges a refresh token for a fresh credential. A
// rejected refresh token wraps upstream.ErrCredentialRefreshFailed. If the
// response omits a new refresh token the old one is kept.
func (c *Client) RefreshCredential(ctx context.Context, refreshToken string) (models.Credential, error) {
	if refreshToken == "" {
		return models.Credential{}, fmt.Errorf("%w: no refresh token", upstream.ErrCredentialRefreshFailed)
	}
	if err := c.wait(ctx); err != nil {
		return models.Credential{}, err
	}

	return upstream.Execute(c.breaker, func() (models.Credential, error) {
		src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err != nil {
			return models.Credential{}, classifyRefreshError(err)
		}
		cred := CredentialFromToken(tok)
		if cred.RefreshToken == "" {
			cred.RefreshToken = refreshToken
		}
		return cred, nil
	})
}

// GetCurrentlyPlaying returns the user's playback state. ErrNoContent means
// the player is idle.
func (c *Client) GetCurrentlyPlaying(ctx context.Context, accessToken string) (models.MusicSnapshot, error) {
	if err := c.wait(ctx); err != nil {
		return models.MusicSnapshot{}, err
	}
	// A 204 passes the breaker as a success.
	res, err := upstream.Execute(c.breaker, func() (playback, error) {
		return c.currentlyPlaying(ctx, accessToken)
	})
	if err != nil {
		return models.MusicSnapshot{}, err
	}
	if res.idle {
		return models.MusicSnapshot{}, ErrNoContent
	}
	return res.snapshot, nil
}

type playback struct {
	snapshot models.MusicSnapshot
	idle     bool
}

func (c *Client) currentlyPlaying(ctx context.Context, accessToken string) (playback, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/player/currently-playing", http.NoBody)
	if err != nil {
		return playback{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return playback{}, upstream.Transient(fmt.Errorf("currently playing: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return playback{idle: true}, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return playback{}, upstream.FromStatus(resp, c.now(),
			fmt.Errorf("currently playing: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload currentlyPlayingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return playback{}, upstream.Transient(fmt.Errorf("decode currently playing: %w", err))
	}
	return playback{snapshot: payload.toSnapshot(c.now())}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return upstream.Transient(fmt.Errorf("spotify request pacing: %w", err))
	}
	return nil
}

// oauthContext makes the oauth2 package use our HTTP client and timeout.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// classifyRefreshError separates a rejected grant from an unreachable token endpoint.
func classifyRefreshError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch code := re.Response.StatusCode; {
		case code == http.StatusTooManyRequests:
			return upstream.RateLimited(upstream.ParseRetryAfter(re.Response.Header, time.Now()), err)
		case code >= 400 && code < 500:
			return fmt.Errorf("%w: %w", upstream.ErrCredentialRefreshFailed, err)
		}
	}
	return upstream.Transient(fmt.Errorf("refresh credential: %w", err))
}

// CredentialFromToken converts an oauth2 token.
func CredentialFromToken(tok *oauth2.Token) models.Credential {
	cred := models.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	return cred
}
