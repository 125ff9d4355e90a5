// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package database persists user accounts and their Spotify credentials in
// BadgerDB.
//
// # Key Layout
//
//	user:<id>               JSON-encoded models.User
//	username:<lowercased>   user id, unique username index
//	credential:<id>         JSON-encoded models.Credential
//
// All values are encoded with goccy/go-json. A user's settings and location
// are stored inside the user record, so a profile update is a single key
// rewrite inside one transaction.
package database
