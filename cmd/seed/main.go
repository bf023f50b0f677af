// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package main is the one-shot dataset loader.
//
// It reads a JSON file with years, stations, and connections and writes
// them into the graph with batched merges. Seeding is idempotent, the
// loader can be re-run after dataset corrections.
//
// Usage:
//
//	NEO4J_URI=bolt://localhost:7687 NEO4J_PASSWORD=... \
//	  ./fahrplanbuch-seed -file dataset.json
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/fahrplanbuch/fahrplanbuch/internal/config"
	"github.com/fahrplanbuch/fahrplanbuch/internal/graph"
	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
)

func main() {
	var (
		file    = flag.String("file", "dataset.json", "path to the JSON dataset")
		timeout = flag.Duration("timeout", 10*time.Minute, "overall seeding timeout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	raw, err := os.ReadFile(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("Failed to read dataset")
	}

	var dataset graph.Dataset
	if err := json.Unmarshal(raw, &dataset); err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("Dataset is not valid JSON")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
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

	start := time.Now()
	if err := store.SeedDataset(ctx, &dataset); err != nil {
		logging.Fatal().Err(err).Msg("Seeding failed")
	}

	logging.Info().
		Dur("elapsed", time.Since(start)).
		Str("file", *file).
		Msg("Seeding complete")
}
