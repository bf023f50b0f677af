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
	"github.com/goccy/go-json"

	"github.com/fahrplanbuch/fahrplanbuch/internal/auth"
	"github.com/fahrplanbuch/fahrplanbuch/internal/graph"
	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// maxUpdateBodySize bounds coordinate update bodies. The payload is two
// floats, anything larger is hostile.
const maxUpdateBodySize = 4 << 10

// UpdateStation sets the coordinates of one station across every year
// it appears in. Admin role is enforced by the route middleware; the
// handler invalidates the affected snapshot cache entries on success.
func (h *Handler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	stopID := chi.URLParam(r, "stopId")
	if stopID == "" {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "Station stop_id is required", nil)
		return
	}

	var req UpdateStationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_PARAMETER",
			"Request body must be JSON with latitude and longitude", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	start := time.Now()
	station, err := h.store.UpdateStationLocation(r.Context(), stopID, *req.Latitude, *req.Longitude)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			metrics.RecordStationUpdate("not_found")
			respondError(w, r, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("Station %s does not exist", sanitizeLogValue(stopID)), nil)
			return
		}
		metrics.RecordStationUpdate("error")
		h.respondStoreError(w, r, err, "Failed to update station coordinates")
		return
	}

	h.invalidateStation(r, stopID)
	metrics.RecordStationUpdate("success")

	username := "unknown"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		username = claims.Username
	}
	logging.Ctx(r.Context()).Info().
		Str("stop_id", sanitizeLogValue(stopID)).
		Float64("latitude", *req.Latitude).
		Float64("longitude", *req.Longitude).
		Str("updated_by", username).
		Msg("Station coordinates updated")

	respondJSON(w, r, http.StatusOK, station, &models.Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// invalidateStation drops the cached snapshots for every year the
// station appears in, plus the whole-graph entry. Cache invalidation is
// best effort, a failed year lookup falls back to clearing all snapshot
// entries rather than serving stale coordinates.
func (h *Handler) invalidateStation(r *http.Request, stopID string) {
	h.cache.Delete(cacheKeyGraphData)

	years, _, err := h.store.StationYears(r.Context(), stopID)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("stop_id", sanitizeLogValue(stopID)).
			Msg("Could not resolve station years, clearing all snapshot entries")
		h.cache.DeletePrefix("network_")
		return
	}

	removed := 0
	for _, year := range years {
		removed += h.cache.DeletePrefix(fmt.Sprintf("network_%d_", year))
	}
	logging.Ctx(r.Context()).Debug().
		Str("stop_id", sanitizeLogValue(stopID)).
		Ints("years", years).
		Int("entries_removed", removed).
		Msg("Snapshot cache invalidated")
}
