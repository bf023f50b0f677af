// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package models

import "time"

// APIResponse is the standard envelope for all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only when Status is "error".
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"nodes": [...], "relationships": [...]},
//	  "metadata": {"timestamp": "2026-09-01T12:00:00Z", "query_time_ms": 45}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
// QueryTimeMS is 0 and Cached is true when the response was served from
// the in-memory cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries structured error details.
//
// Error codes used by the API:
//   - INVALID_PARAMETER: malformed or out-of-range input
//   - UNAUTHORIZED: missing or invalid bearer token
//   - FORBIDDEN: authenticated but insufficient role
//   - NOT_FOUND: resource does not exist
//   - DATABASE_ERROR: graph query failure
//   - SERVICE_UNAVAILABLE: circuit breaker open or database unreachable
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of GET /api/health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Server    string    `json:"server"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}
