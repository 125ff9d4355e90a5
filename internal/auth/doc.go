// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package auth provides account authentication for Hearth.

Key Components:

  - JWTManager: HS256 access tokens and short-lived OAuth state tokens
  - PasswordHasher: bcrypt password hashing
  - Middleware: bearer-token authentication and role checks

Access tokens carry the user id, username, and role. The account named by
ADMIN_USERNAME receives the admin role; everyone else is a user. State tokens
bind a Spotify authorization round trip to the user that started it and expire
after StateTokenTTL.

Websocket clients cannot set headers during the upgrade, so Authenticate also
accepts the token query parameter.

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    log.Fatal(err)
	}
	mw := auth.NewMiddleware(jwtManager, nil)
	r.With(mw.Authenticate).Get("/api/v1/users/me", handler.Me)
*/
package auth
