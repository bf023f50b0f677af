// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package api implements the HTTP surface of the transit network service.
//
// Routing uses the Chi router with production middleware from the Chi
// ecosystem (go-chi/cors, go-chi/httprate). Handlers read from a graph
// store behind a TTL cache and answer with a uniform JSON envelope.
package api
