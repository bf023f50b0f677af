// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"context"
	"time"

	"github.com/fahrplanbuch/fahrplanbuch/internal/cache"
	"github.com/fahrplanbuch/fahrplanbuch/internal/config"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// GraphStore is the graph database surface the handlers depend on.
// *graph.Store satisfies it; tests substitute a stub.
type GraphStore interface {
	Ping(ctx context.Context) error
	AvailableYears(ctx context.Context) ([]int, error)
	GraphData(ctx context.Context) (*models.NetworkSnapshot, error)
	NetworkSnapshot(ctx context.Context, year int, transportType string) (*models.NetworkSnapshot, error)
	UpdateStationLocation(ctx context.Context, stopID string, lat, lng float64) (*models.Station, error)
	StationYears(ctx context.Context, stopID string) ([]int, string, error)
}

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	store       GraphStore
	cache       cache.Cacher
	snapshotTTL time.Duration
	yearsTTL    time.Duration
	version     string
	startTime   time.Time
}

// NewHandler creates a Handler backed by the given store and cache.
func NewHandler(store GraphStore, c cache.Cacher, cfg *config.CacheConfig, version string) *Handler {
	return &Handler{
		store:       store,
		cache:       c,
		snapshotTTL: cfg.SnapshotTTL,
		yearsTTL:    cfg.YearsTTL,
		version:     version,
		startTime:   time.Now(),
	}
}
