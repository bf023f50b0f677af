// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package models defines the domain types shared by the graph store,
// the HTTP handlers, and the client library.
package models

// Station is a transit stop as it existed in a given snapshot year.
// Latitude and Longitude are pointers so that stations without geocoded
// coordinates serialize without the fields instead of as 0,0, which would
// place them in the Gulf of Guinea.
type Station struct {
	// ID is the Neo4j element ID of the node. It is only stable within a
	// single database instance; cross-dataset references use StopID.
	ID string `json:"id"`

	// StopID is the dataset identifier, e.g. "5100_1964". It is unique per
	// station and year.
	StopID string `json:"stop_id"`

	Name string `json:"name"`

	// Type is the transport type: u-bahn, s-bahn, strassenbahn, bus or ferry.
	Type string `json:"type"`

	// EastWest records which side of the Wall the station belonged to
	// during the division years: "east", "west", or empty for unified years.
	EastWest string `json:"east_west,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Description string `json:"description,omitempty"`
}

// HasLocation reports whether the station carries geocoded coordinates.
func (s *Station) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// ConnectionProperties carries the service attributes of one edge between
// two stations. The parallel slices Capacities, Frequencies, LineIDs and
// LineNames are index-aligned: entry i describes line i on this segment.
type ConnectionProperties struct {
	TransportType string `json:"transport_type"`

	// Capacities holds passengers per hour per line on this segment.
	Capacities []float64 `json:"capacities"`

	// Frequencies holds departures per hour per line on this segment.
	Frequencies []float64 `json:"frequencies"`

	LineIDs   []string `json:"line_ids"`
	LineNames []string `json:"line_names"`

	DistanceMeters float64 `json:"distance_meters,omitempty"`

	// HourlyCapacity and HourlyServices aggregate the per-line values.
	HourlyCapacity float64 `json:"hourly_capacity,omitempty"`
	HourlyServices float64 `json:"hourly_services,omitempty"`
}

// Connection is an undirected service link between two stations in a
// snapshot year.
type Connection struct {
	// ID is the Neo4j element ID of the relationship.
	ID string `json:"id"`

	StartNodeID string `json:"start_node_id"`
	EndNodeID   string `json:"end_node_id"`

	// Type is the relationship type, always "CONNECTS_TO".
	Type string `json:"type"`

	Properties ConnectionProperties `json:"properties"`
}

// NetworkSnapshot is the full network state for one year, optionally
// filtered to a single transport type. Nodes holds each station exactly
// once; Relationships holds each connection exactly once regardless of
// traversal direction.
type NetworkSnapshot struct {
	Nodes         []Station    `json:"nodes"`
	Relationships []Connection `json:"relationships"`
}

// TransportTypes lists the canonical transport type values stored on
// Station nodes and CONNECTS_TO relationships.
var TransportTypes = []string{"u-bahn", "s-bahn", "strassenbahn", "tram", "bus", "ferry", "faehre"}
