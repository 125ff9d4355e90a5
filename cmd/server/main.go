// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/hearth/internal/api"
	"github.com/tomtom215/hearth/internal/auth"
	"github.com/tomtom215/hearth/internal/config"
	"github.com/tomtom215/hearth/internal/database"
	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/spotify"
	"github.com/tomtom215/hearth/internal/supervisor"
	"github.com/tomtom215/hearth/internal/supervisor/services"
	"github.com/tomtom215/hearth/internal/weather"
	"github.com/tomtom215/hearth/internal/websocket"
	"github.com/tomtom215/hearth/internal/widgets"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("spotify_enabled", cfg.Spotify.Enabled()).
		Bool("storage_enabled", cfg.Storage.Enabled()).
		Msg("Starting Hearth with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(database.Config{Path: cfg.Database.Path, InMemory: cfg.Database.InMemory})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database opened")

	fileStore, err := initStorage(ctx, &cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize file storage")
	}
	if fileStore != nil {
		defer func() {
			if err := fileStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing file storage")
			}
		}()
	}

	bus := events.NewBus(events.DefaultConfig(), logging.NewWatermillAdapter())
	clock := clockwork.NewRealClock()

	spotifyClient := spotify.NewClient(spotifyConfig(&cfg.Spotify))
	refresher := widgets.NewCredentialRefresher(store, spotifyClient, clock)
	musicEngine := widgets.NewMusicEngine(widgets.EngineConfig{
		Interval:    cfg.Spotify.PollInterval,
		PollTimeout: 2 * cfg.Spotify.RequestTimeout,
		Clock:       clock,
	}, widgets.NewMusicSource(store, refresher, spotifyClient, clock), bus)

	weatherClient := weather.NewClient(weather.Config{
		APIKey:            cfg.Weather.APIKey,
		BaseURL:           cfg.Weather.BaseURL,
		Units:             cfg.Weather.Units,
		RequestTimeout:    cfg.Weather.RequestTimeout,
		RequestsPerSecond: cfg.Weather.RequestsPerSecond,
		Burst:             weather.DefaultConfig().Burst,
	})
	weatherEngine := widgets.NewWeatherEngine(widgets.EngineConfig{
		Interval:    cfg.Weather.PollInterval,
		PollTimeout: 2 * cfg.Weather.RequestTimeout,
		Clock:       clock,
	}, widgets.NewWeatherSource(weatherClient), bus)
	if cfg.Weather.APIKey == "" {
		logging.Warn().Msg("WEATHER_API_KEY is not set; weather updates will fail upstream")
	}

	locationWatcher := widgets.NewLocationWatcher(bus, weatherEngine, cfg.Weather.CoordinatePrecision)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	deps := api.Deps{
		Store:   store,
		Bus:     bus,
		JWT:     jwtManager,
		Hasher:  auth.NewPasswordHasher(cfg.Security.BcryptCost),
		Files:   fileStore,
		Music:   musicEngine,
		Weather: weatherEngine,
		Origins: cfg.Security.CORSOrigins,
	}
	if cfg.Spotify.Enabled() {
		deps.Spotify = spotifyClient
	} else {
		logging.Info().Msg("Spotify integration disabled (SPOTIFY_CLIENT_ID not set)")
	}
	handler := api.NewHandler(deps)

	hub := websocket.NewHub(websocket.Deps{
		Bus:               bus,
		Music:             musicEngine,
		Weather:           weatherEngine,
		Profiles:          websocket.ProfileFunc(handler.Profile),
		LocationPrecision: cfg.Weather.CoordinatePrecision,
	})
	handler.SetHub(hub)

	router := api.NewRouter(handler, api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitOff,
	}))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddMessagingService(bus)
	tree.AddMessagingService(musicEngine)
	tree.AddMessagingService(weatherEngine)
	tree.AddMessagingService(locationWatcher)
	tree.AddAPIService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

func spotifyConfig(cfg *config.SpotifyConfig) spotify.Config {
	sc := spotify.DefaultConfig()
	sc.ClientID = cfg.ClientID
	sc.ClientSecret = cfg.ClientSecret
	sc.RedirectURL = cfg.RedirectURL
	sc.AuthURL = cfg.AuthURL
	sc.TokenURL = cfg.TokenURL
	sc.APIBaseURL = cfg.APIBaseURL
	sc.RequestTimeout = cfg.RequestTimeout
	sc.RequestsPerSecond = cfg.RequestsPerSecond
	return sc
}
