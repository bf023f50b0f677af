// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package main is the entry point for the Fahrplanbuch server.
//
// Fahrplanbuch serves historical snapshots of the Berlin public transit
// network from a Neo4j graph database. Each snapshot is the set of
// stations existing in a given year together with the connections
// between them, filterable by transport type (U-Bahn, S-Bahn, tram,
// bus, ferry).
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading from defaults, config.yaml, and
//     environment variables (Koanf v2)
//  2. Logging: zerolog with json or console output
//  3. Graph store: Neo4j driver with connectivity check and circuit
//     breaker
//  4. Cache: in-process TTL cache for snapshots and the year list
//  5. Authentication: HS256 bearer tokens for the mutation endpoint
//  6. HTTP server: Chi router with CORS, rate limiting, and Prometheus
//     metrics at /metrics
//
// # Configuration
//
// Required settings:
//   - NEO4J_URI: bolt or neo4j URI of the graph database
//   - NEO4J_USERNAME / NEO4J_PASSWORD: database credentials
//   - JWT_SECRET: 32+ character signing secret (required in production)
//
// See config.yaml.example for the full list.
//
// # Token Subcommand
//
// The server exposes no login endpoint. Admin tokens for the station
// update endpoint are minted out of band:
//
//	JWT_SECRET=... ./fahrplanbuch token <username> <role>
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections, in-flight requests get 10 seconds to finish,
// then the driver is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fahrplanbuch/fahrplanbuch/internal/api"
	"github.com/fahrplanbuch/fahrplanbuch/internal/auth"
	"github.com/fahrplanbuch/fahrplanbuch/internal/cache"
	"github.com/fahrplanbuch/fahrplanbuch/internal/config"
	"github.com/fahrplanbuch/fahrplanbuch/internal/graph"
	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		runTokenCommand(os.Args[2:])
		return
	}

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
		Str("version", version).
		Str("neo4j_uri", cfg.Neo4j.URI).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Fahrplanbuch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := graph.NewStore(ctx, &cfg.Neo4j)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to graph database")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Error closing graph driver")
		}
	}()
	logging.Info().Msg("Graph database connected")

	snapshotCache := cache.New(cfg.Cache.SnapshotTTL)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		if cfg.IsProduction() {
			logging.Fatal().Err(err).Msg("Failed to initialize token validation")
		}
		logging.Warn().Err(err).Msg("Token validation disabled, mutation endpoint will reject all requests")
	}

	handler := api.NewHandler(store, snapshotCache, &cfg.Cache, version)
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager), api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.AppUptime.Set(time.Since(startTime).Seconds())
				snapshotCache.PublishMetrics("snapshot")
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Forced shutdown, in-flight requests dropped")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// runTokenCommand mints a bearer token for the station update endpoint.
// Reads the signing secret from the same configuration as the server so
// tokens verify against the running instance.
func runTokenCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: fahrplanbuch token <username> [role]")
		os.Exit(2)
	}
	username := args[0]
	role := "admin"
	if len(args) == 2 {
		role = args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JWT_SECRET must be set to mint tokens: %v\n", err)
		os.Exit(1)
	}

	token, err := jwtManager.GenerateToken(username, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
