// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
	"github.com/fahrplanbuch/fahrplanbuch/internal/validation"
)

// respondJSON writes a success envelope with caching headers and an ETag.
// The ETag covers only the data payload, not the envelope metadata, so a
// cache hit and a fresh fetch of the same data share one validator and
// conditional requests carrying a matching If-None-Match get 304 without
// re-sending the body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, meta *models.Metadata) {
	if meta == nil {
		meta = &models.Metadata{Timestamp: time.Now().UTC()}
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal response")
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to encode response", nil)
		return
	}

	etag := generateETag(payload)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, err := json.Marshal(models.APIResponse{
		Status:   "success",
		Data:     json.RawMessage(payload),
		Metadata: *meta,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal response")
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to encode response", nil)
		return
	}

	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(body)
}

// respondError writes an error envelope. Error responses are never cached.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	body, err := json.Marshal(models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal error response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(body)
}

// generateETag computes a weak FNV-1a based validator over the encoded
// data payload. Envelope metadata (timestamp, cached flag, query time)
// must stay out of the hash or the validator would never repeat.
func generateETag(body []byte) string {
	h := fnv.New64a()
	//nolint:errcheck // fnv.Write never returns an error
	h.Write(body)
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// validateRequest runs struct validation and writes an INVALID_PARAMETER
// envelope on failure. Returns false when the request was rejected.
func validateRequest(w http.ResponseWriter, r *http.Request, s interface{}) bool {
	if err := validation.ValidateStruct(s); err != nil {
		apiErr := err.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam parses an integer path or query parameter.
func getIntParam(value, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
	return n, nil
}

// sanitizeLogValue strips control characters from user-supplied strings
// before they reach structured log output. Prevents log injection via
// crafted path or query parameters.
func sanitizeLogValue(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			b.WriteString(fmt.Sprintf("\\x%02x", r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
