// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	store, err := database.Open(database.Config{Path: cfg.Database.Path})
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Database   DatabaseConfig   `koanf:"database"`
	Spotify    SpotifyConfig    `koanf:"spotify"`
	Weather    WeatherConfig    `koanf:"weather"`
	Storage    StorageConfig    `koanf:"storage"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds authentication, CORS, and rate limiting settings
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	AdminUsername   string        `koanf:"admin_username"` // Account granted the admin role on login
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	RateLimitOff    bool          `koanf:"rate_limit_disabled"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds the Badger user store settings
type DatabaseConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"` // Tests and throwaway deployments only
}

// SpotifyConfig holds the Spotify OAuth application and polling settings
type SpotifyConfig struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	RedirectURL       string        `koanf:"redirect_url"`
	AuthURL           string        `koanf:"auth_url"`
	TokenURL          string        `koanf:"token_url"`
	APIBaseURL        string        `koanf:"api_base_url"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	PollInterval      time.Duration `koanf:"poll_interval"`
}

// Enabled reports whether Spotify credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// WeatherConfig holds the OpenWeatherMap client and polling settings
type WeatherConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Units             string        `koanf:"units"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	PollInterval      time.Duration `koanf:"poll_interval"`

	// CoordinatePrecision is the number of decimal places kept when grouping
	// subscribers by location. Default: 2 (about 1.1 km)
	CoordinatePrecision int `koanf:"coordinate_precision"`
}

// StorageConfig holds the per-user file storage settings.
// A GCS bucket takes precedence over LocalPath; storage is disabled when neither is set.
type StorageConfig struct {
	Bucket          string `koanf:"bucket"`
	CredentialsFile string `koanf:"credentials_file"`
	LocalPath       string `koanf:"local_path"` // Filesystem backend for single-host installs
	MaxUploadBytes  int64  `koanf:"max_upload_bytes"`
	RetryAttempts   int    `koanf:"retry_attempts"`
}

// Enabled reports whether a storage backend is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" || s.LocalPath != ""
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// SupervisorConfig holds suture supervisor tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
