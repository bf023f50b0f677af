// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
)

// seedBatchSize bounds the rows per UNWIND so a large dataset does not
// build one giant transaction.
const seedBatchSize = 500

// SeedStation is one station row of a seed dataset.
type SeedStation struct {
	StopID      string   `json:"stop_id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	EastWest    string   `json:"east_west"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description string   `json:"description,omitempty"`
	Years       []int    `json:"years"`
}

// SeedConnection is one connection row of a seed dataset. Endpoints
// reference stations by stop_id.
type SeedConnection struct {
	FromStopID     string    `json:"from_stop_id"`
	ToStopID       string    `json:"to_stop_id"`
	TransportType  string    `json:"transport_type"`
	Capacities     []float64 `json:"capacities"`
	Frequencies    []float64 `json:"frequencies"`
	LineIDs        []string  `json:"line_ids"`
	LineNames      []string  `json:"line_names"`
	DistanceMeters float64   `json:"distance_meters"`
	HourlyCapacity float64   `json:"hourly_capacity"`
	HourlyServices float64   `json:"hourly_services"`
}

// Dataset is the JSON shape consumed by the seeder.
type Dataset struct {
	Years       []int            `json:"years"`
	Stations    []SeedStation    `json:"stations"`
	Connections []SeedConnection `json:"connections"`
}

// Validate rejects datasets that would produce dangling references.
func (d *Dataset) Validate() error {
	if len(d.Years) == 0 {
		return fmt.Errorf("dataset has no years")
	}

	known := make(map[string]struct{}, len(d.Stations))
	yearSet := make(map[int]struct{}, len(d.Years))
	for _, y := range d.Years {
		yearSet[y] = struct{}{}
	}
	for i, st := range d.Stations {
		if st.StopID == "" {
			return fmt.Errorf("station %d: stop_id is empty", i)
		}
		for _, y := range st.Years {
			if _, ok := yearSet[y]; !ok {
				return fmt.Errorf("station %s: year %d not in dataset years", st.StopID, y)
			}
		}
		known[st.StopID] = struct{}{}
	}
	for i, conn := range d.Connections {
		if _, ok := known[conn.FromStopID]; !ok {
			return fmt.Errorf("connection %d: unknown from_stop_id %q", i, conn.FromStopID)
		}
		if _, ok := known[conn.ToStopID]; !ok {
			return fmt.Errorf("connection %d: unknown to_stop_id %q", i, conn.ToStopID)
		}
	}
	return nil
}

// SeedDataset loads a dataset into the graph with batched UNWIND
// merges. Re-running with the same dataset is idempotent: nodes and
// relationships are MERGEd on their identity keys.
func (s *Store) SeedDataset(ctx context.Context, ds *Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}

	if err := s.createConstraints(ctx); err != nil {
		return err
	}
	if err := s.seedYears(ctx, ds.Years); err != nil {
		return err
	}
	if err := s.seedStations(ctx, ds.Stations); err != nil {
		return err
	}
	if err := s.seedConnections(ctx, ds.Connections); err != nil {
		return err
	}

	logging.Info().
		Int("years", len(ds.Years)).
		Int("stations", len(ds.Stations)).
		Int("connections", len(ds.Connections)).
		Msg("dataset seeded")
	return nil
}

// createConstraints sets up the uniqueness constraints the merges key
// on. Constraint DDL cannot share a transaction with data writes.
func (s *Store) createConstraints(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	constraints := []string{
		`CREATE CONSTRAINT station_stop_id IF NOT EXISTS
		 FOR (s:Station) REQUIRE s.stop_id IS UNIQUE`,
		`CREATE CONSTRAINT year_value IF NOT EXISTS
		 FOR (y:Year) REQUIRE y.year IS UNIQUE`,
	}
	for _, stmt := range constraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("creating constraint: %w", err)
		}
	}
	return nil
}

func (s *Store) seedYears(ctx context.Context, years []int) error {
	_, err := s.write(ctx, "seed_years", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`UNWIND $years AS year MERGE (:Year {year: year})`,
			map[string]any{"years": years})
		if err != nil {
			return nil, err
		}
		return nil, result.Err()
	})
	if err != nil {
		return fmt.Errorf("seeding years: %w", err)
	}
	return nil
}

func (s *Store) seedStations(ctx context.Context, stations []SeedStation) error {
	for start := 0; start < len(stations); start += seedBatchSize {
		batch := stations[start:min(start+seedBatchSize, len(stations))]

		rows := make([]map[string]any, 0, len(batch))
		for _, st := range batch {
			row := map[string]any{
				"stop_id":     st.StopID,
				"name":        st.Name,
				"type":        st.Type,
				"east_west":   st.EastWest,
				"description": st.Description,
				"years":       st.Years,
			}
			// Ungeocoded stations get no coordinate properties at all,
			// never a lone latitude or longitude.
			if st.Latitude != nil && st.Longitude != nil {
				row["latitude"] = *st.Latitude
				row["longitude"] = *st.Longitude
			}
			rows = append(rows, row)
		}

		_, err := s.write(ctx, "seed_stations", func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, `
				UNWIND $rows AS row
				MERGE (s:Station {stop_id: row.stop_id})
				SET s.name = row.name,
				    s.type = row.type,
				    s.east_west = row.east_west,
				    s.description = row.description,
				    s.latitude = row.latitude,
				    s.longitude = row.longitude
				WITH s, row
				UNWIND row.years AS year
				MATCH (y:Year {year: year})
				MERGE (s)-[:IN_YEAR]->(y)`,
				map[string]any{"rows": rows})
			if err != nil {
				return nil, err
			}
			return nil, result.Err()
		})
		if err != nil {
			return fmt.Errorf("seeding stations (offset %d): %w", start, err)
		}
	}
	return nil
}

func (s *Store) seedConnections(ctx context.Context, connections []SeedConnection) error {
	for start := 0; start < len(connections); start += seedBatchSize {
		batch := connections[start:min(start+seedBatchSize, len(connections))]

		rows := make([]map[string]any, 0, len(batch))
		for _, conn := range batch {
			rows = append(rows, map[string]any{
				"from":            conn.FromStopID,
				"to":              conn.ToStopID,
				"transport_type":  conn.TransportType,
				"capacities":      conn.Capacities,
				"frequencies":     conn.Frequencies,
				"line_ids":        conn.LineIDs,
				"line_names":      conn.LineNames,
				"distance_meters": conn.DistanceMeters,
				"hourly_capacity": conn.HourlyCapacity,
				"hourly_services": conn.HourlyServices,
			})
		}

		_, err := s.write(ctx, "seed_connections", func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, `
				UNWIND $rows AS row
				MATCH (a:Station {stop_id: row.from})
				MATCH (b:Station {stop_id: row.to})
				MERGE (a)-[r:CONNECTS_TO {transport_type: row.transport_type, line_ids: row.line_ids}]->(b)
				SET r.capacities = row.capacities,
				    r.frequencies = row.frequencies,
				    r.line_names = row.line_names,
				    r.distance_meters = row.distance_meters,
				    r.hourly_capacity = row.hourly_capacity,
				    r.hourly_services = row.hourly_services`,
				map[string]any{"rows": rows})
			if err != nil {
				return nil, err
			}
			return nil, result.Err()
		})
		if err != nil {
			return fmt.Errorf("seeding connections (offset %d): %w", start, err)
		}
	}
	return nil
}
