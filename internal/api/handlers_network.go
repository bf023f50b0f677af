// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fahrplanbuch/fahrplanbuch/internal/graph"
	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// Cache keys for the read endpoints. Snapshot keys embed year and type
// so invalidation can target the years a station appears in.
const (
	cacheKeyYears     = "available_years"
	cacheKeyGraphData = "graph_data"
)

func snapshotCacheKey(year int, transportType string) string {
	if transportType == "" {
		return fmt.Sprintf("network_%d_all", year)
	}
	return fmt.Sprintf("network_%d_%s", year, transportType)
}

// AvailableYears lists every year the dataset has a snapshot for,
// ascending.
func (h *Handler) AvailableYears(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cacheKeyYears); ok {
		metrics.RecordCacheHit("years")
		respondJSON(w, r, http.StatusOK, cached, &models.Metadata{Cached: true})
		return
	}
	metrics.RecordCacheMiss("years")

	start := time.Now()
	years, err := h.store.AvailableYears(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to load available years")
		return
	}

	h.cache.SetWithTTL(cacheKeyYears, years, h.yearsTTL)
	respondJSON(w, r, http.StatusOK, years, &models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// NetworkSnapshot returns the stations and connections of one year,
// optionally filtered to a single transport type.
func (h *Handler) NetworkSnapshot(w http.ResponseWriter, r *http.Request) {
	year, err := getIntParam(chi.URLParam(r, "year"), "year")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}

	req := SnapshotRequest{
		Year: year,
		Type: r.URL.Query().Get("type"),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	key := snapshotCacheKey(req.Year, req.Type)
	if cached, ok := h.cache.Get(key); ok {
		metrics.RecordCacheHit("snapshot")
		respondJSON(w, r, http.StatusOK, cached, &models.Metadata{Cached: true})
		return
	}
	metrics.RecordCacheMiss("snapshot")

	start := time.Now()
	snapshot, err := h.store.NetworkSnapshot(r.Context(), req.Year, req.Type)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("No network data for year %d", req.Year), nil)
			return
		}
		h.respondStoreError(w, r, err, "Failed to load network snapshot")
		return
	}

	h.cache.SetWithTTL(key, snapshot, h.snapshotTTL)
	respondJSON(w, r, http.StatusOK, snapshot, &models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// GraphData returns the full graph across all years. Heavy query, the
// result is cached with the snapshot TTL.
func (h *Handler) GraphData(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cacheKeyGraphData); ok {
		metrics.RecordCacheHit("snapshot")
		respondJSON(w, r, http.StatusOK, cached, &models.Metadata{Cached: true})
		return
	}
	metrics.RecordCacheMiss("snapshot")

	start := time.Now()
	snapshot, err := h.store.GraphData(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to load graph data")
		return
	}

	h.cache.SetWithTTL(cacheKeyGraphData, snapshot, h.snapshotTTL)
	respondJSON(w, r, http.StatusOK, snapshot, &models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// respondStoreError maps graph store failures onto the error envelope.
// A tripped circuit breaker reports 503 so clients can back off.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, graph.ErrUnavailable) {
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Graph database temporarily unavailable", nil)
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg(message)
	respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", message, nil)
}
