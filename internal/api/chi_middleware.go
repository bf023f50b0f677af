// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
	"github.com/goccy/go-json"
)

// ChiMiddlewareConfig holds configuration for the Chi middleware
// factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// ChiMiddleware provides Chi-compatible middleware built from
// production-hardened implementations in the Chi ecosystem.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory for the given
// configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors handler. Applied globally so OPTIONS
// preflight requests are answered before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter using go-chi/httprate.
// Exceeded limits answer with the standard error envelope and a
// Retry-After header.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// RateLimitWrite returns a stricter limiter for the mutation endpoints.
// One fifth of the read budget, minimum ten requests per window.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	requests := m.config.RateLimitRequests / 5
	if requests < 10 {
		requests = 10
	}
	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

// rateLimitExceeded writes the 429 envelope when httprate rejects a
// request.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	logging.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Rate limit exceeded")

	body, _ := json.Marshal(models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    "RATE_LIMIT_EXCEEDED",
			Message: "Too many requests, slow down",
		},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write(body)
}

// APISecurityHeaders adds defensive headers to every API response.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
