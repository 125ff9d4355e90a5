// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package services provides suture.Service wrappers for components whose
lifecycle does not already match suture's Serve(ctx) pattern.

The event bus, poll engines, location watcher and websocket hub implement
Serve themselves and are added to the tree directly. The HTTP server uses the
ListenAndServe/Shutdown pattern and is wrapped by HTTPServerService:

	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

Return values determine supervisor behavior:

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted with backoff
	ctx.Err()   -> shutdown requested
*/
package services
