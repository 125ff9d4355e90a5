// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package widgets instantiates the generic poll engine for the two live widgets.

Key Components:

  - MusicSource: resolves a user's Spotify credential (refreshing it when
    expired) and fetches the currently playing item. Keyed by user ID.
  - WeatherSource: fetches current conditions for a location key. Keyed by
    rounded coordinates so nearby users share one poll.
  - MusicChanged, WeatherChanged: the change detectors.
  - CredentialRefresher: one refresh per user at a time, persisted on success.
  - LocationWatcher: moves a user's weather subscription when their saved
    location changes.

Engines publish onto the event bus as MusicStateUpdated and
WeatherStateUpdated; the websocket layer routes those to connections.
*/
package widgets
