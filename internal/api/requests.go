// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package api

// SnapshotRequest carries the validated parameters of a network
// snapshot query. Year bounds cover the historical dataset range.
type SnapshotRequest struct {
	Year int    `validate:"required,min=1800,max=2100"`
	Type string `validate:"omitempty,oneof=u-bahn s-bahn strassenbahn tram bus ferry faehre"`
}

// UpdateStationRequest is the body of a station coordinate update.
// Pointers distinguish an absent field from an explicit zero, which is
// a valid coordinate.
type UpdateStationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}
