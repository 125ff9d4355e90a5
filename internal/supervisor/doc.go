// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package supervisor runs Hearth's long-lived services under suture v4.

	hearth
	├── messaging-layer
	│   ├── event-bus
	│   ├── music-poll-engine
	│   ├── weather-poll-engine
	│   └── location-watcher
	└── api-layer
	    ├── websocket-hub
	    └── http-server

Crashed services are restarted with backoff. Cancelling the context passed to
Serve stops every service, each within TreeConfig.ShutdownTimeout, which is
how SIGINT and SIGTERM turn into a graceful shutdown.

Supervisor events are logged through sutureslog into the zerolog logger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddMessagingService(bus)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
