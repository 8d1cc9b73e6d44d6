// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Command server runs the DateAI Discover API: it aggregates events from the
// enabled providers, clusters them for the map and streams loading state to
// websocket clients.
//
// Configuration is layered with koanf (highest priority wins):
//   - environment variables, e.g. SERVER_PORT, PROVIDERS_TICKETMASTER_API_KEY
//   - the YAML file named by CONFIG_PATH, or ./config.yaml
//   - built-in defaults
//
// SIGINT and SIGTERM stop the supervisor tree; in-flight requests get
// server.shutdown_timeout to finish.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bestfriendai/date-ai-discover/internal/aggregator"
	"github.com/bestfriendai/date-ai-discover/internal/api"
	"github.com/bestfriendai/date-ai-discover/internal/cache"
	"github.com/bestfriendai/date-ai-discover/internal/config"
	"github.com/bestfriendai/date-ai-discover/internal/loading"
	"github.com/bestfriendai/date-ai-discover/internal/logging"
	"github.com/bestfriendai/date-ai-discover/internal/providers"
	"github.com/bestfriendai/date-ai-discover/internal/supervisor"
	"github.com/bestfriendai/date-ai-discover/internal/supervisor/services"
	"github.com/bestfriendai/date-ai-discover/internal/websocket"
)

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

	enabled := cfg.EnabledProviders()
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Strs("providers", enabled).
		Msg("Configuration loaded")
	if len(enabled) == 0 {
		logging.Warn().Msg("No event providers enabled; searches will return no events")
	}

	provs := providers.NewFromConfig(cfg.Providers)

	resultCache := cache.New[aggregator.Result](cache.Config{
		Name:          "search",
		TTL:           cfg.Cache.TTL,
		MaxBytes:      cfg.Cache.MaxBytes,
		SweepInterval: cfg.Cache.SweepInterval,
	})

	tracker := loading.NewTracker()
	defer tracker.Close()

	pipeline := aggregator.New(provs, resultCache, tracker, aggregator.Config{
		ProviderTimeout:     cfg.Aggregation.ProviderTimeout,
		DefaultRadius:       cfg.Aggregation.DefaultRadius,
		CoordinatePrecision: cfg.Aggregation.CoordinatePrecision,
		ProviderPageSize:    cfg.Aggregation.ProviderPageSize,
		DefaultPageSize:     cfg.API.DefaultPageSize,
		MaxPageSize:         cfg.API.MaxPageSize,
		CacheTTL:            cfg.Cache.TTL,
	})

	hub := websocket.NewHub()
	bridge := websocket.NewBridge(tracker, hub)

	handler := api.NewHandler(api.Deps{
		Search: pipeline,
		Cache:  resultCache,
		Hub:    hub,
		Config: cfg,
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		// Searches wait on the slowest provider, so writes get the
		// provider budget on top of the request timeout.
		WriteTimeout: cfg.Server.Timeout + cfg.Aggregation.ProviderTimeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMaintenanceService(resultCache)
	tree.AddMaintenanceService(handler.SessionCleanup(cfg.Cache.SweepInterval))
	tree.AddMessagingService(hub)
	tree.AddMessagingService(bridge)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("Server stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
