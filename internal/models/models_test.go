// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestStationHasLocation(t *testing.T) {
	t.Parallel()

	lat, lng := 52.5200, 13.4050
	tests := []struct {
		name    string
		station Station
		want    bool
	}{
		{"both set", Station{Latitude: &lat, Longitude: &lng}, true},
		{"only latitude", Station{Latitude: &lat}, false},
		{"only longitude", Station{Longitude: &lng}, false},
		{"neither", Station{}, false},
	}

	for _, tt := range tests {
		if got := tt.station.HasLocation(); got != tt.want {
			t.Errorf("%s: HasLocation() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStationOmitsMissingCoordinates(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Station{StopID: "5100_1964", Name: "Alexanderplatz", Type: "u-bahn"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "latitude") {
		t.Errorf("ungeocoded station serialized latitude: %s", data)
	}
}

func TestStationSerializesZeroCoordinates(t *testing.T) {
	t.Parallel()

	zero := 0.0
	data, err := json.Marshal(Station{StopID: "x", Latitude: &zero, Longitude: &zero})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// An explicit zero coordinate is a real value and must survive.
	if !strings.Contains(string(data), `"latitude":0`) {
		t.Errorf("explicit zero latitude dropped: %s", data)
	}
}

func TestAPIErrorOmitsEmptyDetails(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(APIError{Code: "NOT_FOUND", Message: "no such station"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "details") {
		t.Errorf("empty details serialized: %s", data)
	}
}
