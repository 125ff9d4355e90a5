// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package api provides the HTTP surface of Hearth.

Routes are served by a chi router (see NewRouter):

	/health/live, /health/ready          probes, no auth
	/metrics                             Prometheus exposition
	/api/v1/auth/{register,login}        local accounts, strict rate limit
	/api/v1/integrations/spotify/callback  OAuth redirect target, identified by signed state
	/api/v1/users/me[...]                profile, location and settings
	/api/v1/integrations/spotify         authorize and disconnect
	/api/v1/files[/{name}]               per-user file storage
	/api/v1/admin/poll-status            poll engine status, admin only
	/api/v1/ws                           websocket upgrade

Every JSON response uses the APIResponse envelope. Errors carry one of the
ErrCode* constants and the request ID.

Profile changes are written to the user store first and then published on the
event bus as UserProfileUpdated, which is how open websocket connections learn
about new settings and how the weather subscription follows a moved location.
*/
package api
