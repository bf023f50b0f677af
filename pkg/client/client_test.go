// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

func writeSuccess(t *testing.T, w http.ResponseWriter, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models.APIResponse{Status: "success", Data: data}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func writeError(t *testing.T, w http.ResponseWriter, status int, code, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: code, Message: message},
	}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(&Config{BaseURL: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (&Config{}).Validate(); err == nil {
		t.Error("empty base URL should be rejected")
	}
	if err := (&Config{BaseURL: "http://localhost:5000"}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestAvailableYears(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/available-years" {
			t.Errorf("path = %q, want /api/available-years", r.URL.Path)
		}
		writeSuccess(t, w, []int{1946, 1961, 1989})
	})

	years, err := c.AvailableYears(context.Background())
	if err != nil {
		t.Fatalf("AvailableYears() error = %v", err)
	}
	if len(years) != 3 || years[1] != 1961 {
		t.Errorf("years = %v, want [1946 1961 1989]", years)
	}
}

func TestSnapshotDeduplicatesUnorderedPairs(t *testing.T) {
	t.Parallel()

	snapshot := models.NetworkSnapshot{
		Nodes: []models.Station{
			{ID: "n1", StopID: "1", Name: "Alexanderplatz"},
			{ID: "n2", StopID: "2", Name: "Stadtmitte"},
		},
		Relationships: []models.Connection{
			// Two parallel lines on the same pair plus the reverse
			// direction. Only the first survives.
			{ID: "r1", StartNodeID: "n1", EndNodeID: "n2"},
			{ID: "r2", StartNodeID: "n1", EndNodeID: "n2"},
			{ID: "r3", StartNodeID: "n2", EndNodeID: "n1"},
			// Self-loop is its own pair and stays.
			{ID: "r4", StartNodeID: "n1", EndNodeID: "n1"},
		},
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "u-bahn" {
			t.Errorf("type = %q, want u-bahn", got)
		}
		writeSuccess(t, w, snapshot)
	})

	data, err := c.Snapshot(context.Background(), 1961, "u-bahn")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(data.Connections) != 2 {
		t.Fatalf("len(Connections) = %d, want 2", len(data.Connections))
	}
	if data.Connections[0].ID != "r1" {
		t.Errorf("first connection = %q, want r1 (first seen wins)", data.Connections[0].ID)
	}
	if data.Connections[1].ID != "r4" {
		t.Errorf("second connection = %q, want the self-loop r4", data.Connections[1].ID)
	}
	if len(data.Stations) != 2 {
		t.Errorf("len(Stations) = %d, want 2", len(data.Stations))
	}
}

func TestFilterByLine(t *testing.T) {
	t.Parallel()

	data := &NetworkData{
		Stations: []models.Station{{ID: "n1"}},
		Connections: []models.Connection{
			{ID: "r1", Properties: models.ConnectionProperties{LineNames: []string{"U2", "U5"}}},
			{ID: "r2", Properties: models.ConnectionProperties{LineNames: []string{"U6"}}},
			{ID: "r3", Properties: models.ConnectionProperties{LineNames: nil}},
		},
	}

	filtered := FilterByLine(data, "U5")
	if len(filtered.Connections) != 1 || filtered.Connections[0].ID != "r1" {
		t.Errorf("Connections = %+v, want only r1", filtered.Connections)
	}
	if len(filtered.Stations) != 1 {
		t.Error("stations should pass through unfiltered")
	}

	if all := FilterByLine(data, ""); len(all.Connections) != 3 {
		t.Errorf("empty line should not filter, got %d connections", len(all.Connections))
	}
}

func TestUpdateStation(t *testing.T) {
	t.Parallel()

	lat, lng := 52.52, 13.41
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/stations/900100003/update" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		var body map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["latitude"] != lat || body["longitude"] != lng {
			t.Errorf("body = %v", body)
		}
		writeSuccess(t, w, models.Station{StopID: "900100003", Latitude: &lat, Longitude: &lng})
	})

	station, err := c.UpdateStation(context.Background(), "900100003", lat, lng)
	if err != nil {
		t.Fatalf("UpdateStation() error = %v", err)
	}
	if station.StopID != "900100003" || station.Latitude == nil || *station.Latitude != lat {
		t.Errorf("station = %+v", station)
	}
}

func TestUpdateStationAndRefresh(t *testing.T) {
	t.Parallel()

	lat, lng := 52.52, 13.41
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			writeSuccess(t, w, models.Station{StopID: "1", Latitude: &lat, Longitude: &lng})
		default:
			writeSuccess(t, w, models.NetworkSnapshot{
				Nodes: []models.Station{{ID: "n1", StopID: "1", Latitude: &lat, Longitude: &lng}},
			})
		}
	})

	station, data, err := c.UpdateStationAndRefresh(context.Background(), "1", lat, lng, 1961, "")
	if err != nil {
		t.Fatalf("UpdateStationAndRefresh() error = %v", err)
	}
	if station == nil || data == nil {
		t.Fatal("expected both station and refreshed data")
	}
	if len(data.Stations) != 1 {
		t.Errorf("len(Stations) = %d, want 1", len(data.Stations))
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"invalid parameter", http.StatusBadRequest, "INVALID_PARAMETER", ErrInvalidParameter},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", ErrForbidden},
		{"not found", http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(t, w, tt.status, tt.code, "nope")
			})

			_, err := c.Snapshot(context.Background(), 1961, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnknownErrorCode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(t, w, http.StatusInternalServerError, "DATABASE_ERROR", "query failed")
	})

	_, err := c.Snapshot(context.Background(), 1961, "")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sentinel := range []error{ErrInvalidParameter, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrRateLimited, ErrUnavailable} {
		if errors.Is(err, sentinel) {
			t.Errorf("DATABASE_ERROR should not map to %v", sentinel)
		}
	}
}

func TestPacedClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(t, w, []int{1961})
	}))
	t.Cleanup(srv.Close)

	c, err := New(&Config{BaseURL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.AvailableYears(context.Background()); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
}
