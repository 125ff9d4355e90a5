// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	if err := c.validateWeather(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validEnvironments defines the allowed server environments
var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// validateSecurity validates authentication, CORS, and rate limiting
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validateRateLimits validates rate limiting bounds
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitOff {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

// validateDatabase validates the badger store location
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" && !c.Database.InMemory {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

// validateSpotify validates Spotify settings (only if credentials are set)
func (c *Config) validateSpotify() error {
	if c.Spotify.PollInterval < time.Second {
		return fmt.Errorf("MUSIC_POLL_INTERVAL must be at least 1s")
	}
	if !c.Spotify.Enabled() {
		return nil
	}
	if c.Spotify.RedirectURL == "" {
		return fmt.Errorf("SPOTIFY_REDIRECT_URL is required when SPOTIFY_CLIENT_ID is set")
	}
	for name, value := range map[string]string{
		"SPOTIFY_REDIRECT_URL": c.Spotify.RedirectURL,
		"SPOTIFY_AUTH_URL":     c.Spotify.AuthURL,
		"SPOTIFY_TOKEN_URL":    c.Spotify.TokenURL,
		"SPOTIFY_API_BASE_URL": c.Spotify.APIBaseURL,
	} {
		if err := validateHTTPURL(value, name); err != nil {
			return err
		}
	}
	return nil
}

// validWeatherUnits defines the unit systems OpenWeatherMap accepts
var validWeatherUnits = map[string]bool{
	"standard": true,
	"metric":   true,
	"imperial": true,
}

// validateWeather validates weather client settings
func (c *Config) validateWeather() error {
	if c.Weather.PollInterval < time.Minute {
		return fmt.Errorf("WEATHER_POLL_INTERVAL must be at least 1m")
	}
	if !validWeatherUnits[c.Weather.Units] {
		return fmt.Errorf("WEATHER_UNITS must be one of: standard, metric, imperial")
	}
	if c.Weather.CoordinatePrecision < 0 || c.Weather.CoordinatePrecision > 6 {
		return fmt.Errorf("WEATHER_COORDINATE_PRECISION must be between 0 and 6")
	}
	return validateHTTPURL(c.Weather.BaseURL, "WEATHER_BASE_URL")
}

// validateStorage validates file storage settings (only if a bucket is set)
func (c *Config) validateStorage() error {
	if !c.Storage.Enabled() {
		return nil
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Storage.RetryAttempts < 1 {
		return fmt.Errorf("STORAGE_RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks that value is an absolute http(s) URL.
func validateHTTPURL(value, name string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
