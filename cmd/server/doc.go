// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package main is the entry point for the Hearth server.

Hearth is the backend of a personal smart display. It serves accounts, per-user
file storage and a websocket that pushes the currently playing Spotify track
and the local weather to every open display.

# Application Architecture

	RootSupervisor ("hearth")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── event bus (watermill gochannel)
	│   ├── music poll engine (one timer per user)
	│   ├── weather poll engine (one timer per rounded location)
	│   └── location watcher (moves weather subscriptions on profile changes)
	└── APISupervisor ("api-layer")
	    ├── websocket hub
	    └── HTTP server (chi)

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Database: badger user store
 4. File storage: GCS bucket, local directory, or disabled
 5. Upstream clients and poll engines
 6. HTTP handlers, websocket hub, router
 7. Supervisor tree, run until SIGINT or SIGTERM

# Configuration

Required:
  - JWT_SECRET: 32+ character secret for token signing

Common:
  - HTTP_PORT (default 8080), BADGER_PATH (default /data/hearth)
  - SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REDIRECT_URL
  - WEATHER_API_KEY
  - GCS_BUCKET or STORAGE_LOCAL_PATH
  - ADMIN_USERNAME: the account allowed to read /api/v1/admin/poll-status

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 48)
	export WEATHER_API_KEY=your-openweathermap-key
	export STORAGE_LOCAL_PATH=/data/files
	./hearth

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, websocket clients receive a close frame, and every
poll timer is stopped before the database is closed.
*/
package main
