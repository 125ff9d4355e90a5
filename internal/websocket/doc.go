// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package websocket pushes live widget updates to connected displays.

Key Components:

  - Hub: tracks every live connection and closes them on shutdown
  - Client: one authenticated connection with read and write goroutines
  - Router: bridges the event bus to one connection, filtering by user
  - Message: the {type, payload} envelope used in both directions

Each client owns three goroutines:
  - readPump: reads commands and keeps the read deadline alive on pong
  - writePump: writes queued messages and pings the peer
  - Router.Run: drains the client's bus subscription into the send queue

Outbound message types:

  - STATE: sent once on connect with the user's profile and widget flags
  - SETTINGS: the user's profile changed (location, units, theme)
  - MUSIC_UPDATE: new playback snapshot
  - WEATHER_UPDATE: new conditions for the user's location
  - ERROR: a command could not be applied

Inbound commands:

  - START_MUSIC_UPDATES / STOP_MUSIC_UPDATES
  - START_WEATHER_UPDATES / STOP_WEATHER_UPDATES
  - PING (answered with PONG)

A connection subscribes to the poll engines under its user ID. Closing the
connection releases every subscription it took. Sends never block: when a
client's queue is full the message is dropped and counted.
*/
package websocket
