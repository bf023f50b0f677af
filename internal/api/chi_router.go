// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fahrplanbuch/fahrplanbuch/internal/auth"
	"github.com/fahrplanbuch/fahrplanbuch/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers, auth, and middleware into the HTTP route tree.
type Router struct {
	handler       *Handler
	authMW        *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router from its assembled pieces.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		authMW:        authMW,
		chiMiddleware: chiMW,
	}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS is global
	// so OPTIONS preflight requests are handled before routing.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Read endpoints, public, IP rate limited.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/health", router.handler.Health)
			r.Get("/available-years", router.handler.AvailableYears)
			r.Get("/graph-data", router.handler.GraphData)
			r.Get("/network-snapshot/{year}", router.handler.NetworkSnapshot)
		})

		// Mutations require an admin bearer token and carry a stricter
		// rate limit.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.Post("/stations/{stopId}/update",
				router.authMW.RequireRole("admin", router.handler.UpdateStation))
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
