// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/hearth/config.yaml",
	"/etc/hearth/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			SessionTimeout:  24 * time.Hour,
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "/data/hearth",
		},
		Spotify: SpotifyConfig{
			AuthURL:           "https://accounts.spotify.com/authorize",
			TokenURL:          "https://accounts.spotify.com/api/token",
			APIBaseURL:        "https://api.spotify.com/v1",
			RequestTimeout:    10 * time.Second,
			RequestsPerSecond: 20,
			PollInterval:      3 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:             "https://api.openweathermap.org/data/2.5",
			Units:               "metric",
			RequestTimeout:      10 * time.Second,
			RequestsPerSecond:   1,
			PollInterval:        10 * time.Minute,
			CoordinatePrecision: 2,
		},
		Storage: StorageConfig{
			MaxUploadBytes: 10 << 20,
			RetryAttempts:  4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"admin_username":      "security.admin_username",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Database
	"badger_path":      "database.path",
	"badger_in_memory": "database.in_memory",

	// Spotify
	"spotify_client_id":           "spotify.client_id",
	"spotify_client_secret":       "spotify.client_secret",
	"spotify_redirect_url":        "spotify.redirect_url",
	"spotify_auth_url":            "spotify.auth_url",
	"spotify_token_url":           "spotify.token_url",
	"spotify_api_base_url":        "spotify.api_base_url",
	"spotify_request_timeout":     "spotify.request_timeout",
	"spotify_requests_per_second": "spotify.requests_per_second",
	"music_poll_interval":         "spotify.poll_interval",

	// Weather
	"weather_api_key":              "weather.api_key",
	"weather_base_url":             "weather.base_url",
	"weather_units":                "weather.units",
	"weather_request_timeout":      "weather.request_timeout",
	"weather_requests_per_second":  "weather.requests_per_second",
	"weather_poll_interval":        "weather.poll_interval",
	"weather_coordinate_precision": "weather.coordinate_precision",

	// Storage
	"gcs_bucket":               "storage.bucket",
	"gcs_credentials_file":     "storage.credentials_file",
	"storage_local_path":       "storage.local_path",
	"storage_max_upload_bytes": "storage.max_upload_bytes",
	"storage_retry_attempts":   "storage.retry_attempts",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - SPOTIFY_CLIENT_ID -> spotify.client_id
//   - WEATHER_COORDINATE_PRECISION -> weather.coordinate_precision
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so unrelated environment variables never leak into config.
	return ""
}
