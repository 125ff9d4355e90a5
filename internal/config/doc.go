// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package config provides centralized configuration management for Hearth.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file, then environment variables. The file is located through CONFIG_PATH or
the first match in DefaultConfigPaths.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - SecurityConfig: JWT secret, session lifetime, bcrypt cost, CORS, rate limits
  - DatabaseConfig: Badger user store path
  - SpotifyConfig: OAuth application and music poll interval
  - WeatherConfig: OpenWeatherMap client, poll interval, coordinate precision
  - StorageConfig: per-user file storage in GCS or a local directory
  - LoggingConfig: zerolog level and format
  - SupervisorConfig: suture restart policy

# Environment Variables

Only mapped variables are read; everything else in the environment is ignored.

  - HTTP_PORT, HTTP_HOST, ENVIRONMENT
  - JWT_SECRET (required, at least 32 characters), SESSION_TIMEOUT, BCRYPT_COST, ADMIN_USERNAME
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - BADGER_PATH, BADGER_IN_MEMORY
  - SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REDIRECT_URL, MUSIC_POLL_INTERVAL
  - WEATHER_API_KEY, WEATHER_UNITS, WEATHER_POLL_INTERVAL, WEATHER_COORDINATE_PRECISION
  - GCS_BUCKET, GCS_CREDENTIALS_FILE, STORAGE_LOCAL_PATH, STORAGE_MAX_UPLOAD_BYTES, STORAGE_RETRY_ATTEMPTS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
