// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package client

import (
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// NetworkData is the render-ready shape of one snapshot.
type NetworkData struct {
	Stations    []models.Station    `json:"stations"`
	Connections []models.Connection `json:"connections"`
}

// reshape collapses the raw snapshot into NetworkData. Exactly one
// connection is kept per unordered endpoint pair; the first one seen
// wins. Self-loops keep their single pair key and survive.
func reshape(snapshot *models.NetworkSnapshot) *NetworkData {
	data := &NetworkData{
		Stations:    snapshot.Nodes,
		Connections: make([]models.Connection, 0, len(snapshot.Relationships)),
	}
	if data.Stations == nil {
		data.Stations = []models.Station{}
	}

	seen := make(map[[2]string]struct{}, len(snapshot.Relationships))
	for _, conn := range snapshot.Relationships {
		key := pairKey(conn.StartNodeID, conn.EndNodeID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		data.Connections = append(data.Connections, conn)
	}
	return data
}

// pairKey builds a direction-independent key for two node identities.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// FilterByLine returns a copy of data keeping only connections whose
// line names include the given line. Stations are left untouched; an
// empty line name means no filtering.
func FilterByLine(data *NetworkData, line string) *NetworkData {
	if line == "" {
		return data
	}

	filtered := &NetworkData{
		Stations:    data.Stations,
		Connections: make([]models.Connection, 0, len(data.Connections)),
	}
	for _, conn := range data.Connections {
		for _, name := range conn.Properties.LineNames {
			if name == line {
				filtered.Connections = append(filtered.Connections, conn)
				break
			}
		}
	}
	return filtered
}
