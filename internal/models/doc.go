// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package models defines the data structures shared across Hearth.

Key Components:

  - User, Location, Settings: persisted account data
  - UserView: the public projection of a user sent to clients and carried on profile events
  - Credential: Spotify OAuth credential owned by a user
  - MusicSnapshot, WeatherSnapshot: one point-in-time upstream state, published to live widgets

Snapshots are values. They are compared by the widget change detectors and
cached by the poll engines, so they must not share mutable state once built.
*/
package models
