// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// healthCheckTimeout bounds the database ping so a hung driver cannot
// stall monitoring probes.
const healthCheckTimeout = 5 * time.Second

// Health reports service and database health.
// Returns 200 when the graph database answers a ping, 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := &models.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Database:  "connected",
		Server:    "running",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	httpStatus := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database unreachable")
		status.Status = "degraded"
		status.Database = "disconnected"
		httpStatus = http.StatusServiceUnavailable
	}

	respondJSON(w, r, httpStatus, status, nil)
}
