// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// AvailableYears returns the snapshot years present in the graph in
// ascending order.
func (s *Store) AvailableYears(ctx context.Context) ([]int, error) {
	result, err := s.read(ctx, "available_years", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (y:Year) RETURN y.year AS year ORDER BY year`, nil)
		if err != nil {
			return nil, err
		}

		var years []int
		for res.Next(ctx) {
			if year, ok := toInt(res.Record().Values[0]); ok {
				years = append(years, year)
			}
		}
		return years, res.Err()
	})
	if err != nil {
		return nil, err
	}

	years := result.([]int)
	sort.Ints(years)
	return years, nil
}

// NetworkSnapshot returns every station active in the given year and
// the connections between them. A non-empty transportType restricts
// both stations and connections to that type.
//
// The undirected CONNECTS_TO pattern matches each relationship from
// both endpoints, so results are deduplicated by element ID before they
// leave this method.
func (s *Store) NetworkSnapshot(ctx context.Context, year int, transportType string) (*models.NetworkSnapshot, error) {
	query := `
		MATCH (y:Year {year: $year})
		MATCH (s1:Station)-[:IN_YEAR]->(y)
		` + typeFilter(transportType, "s1") + `
		OPTIONAL MATCH (s1)-[r:CONNECTS_TO]-(s2:Station)-[:IN_YEAR]->(y)
		` + relTypeFilter(transportType) + `
		RETURN s1, r, s2`

	params := map[string]any{"year": year}
	if transportType != "" {
		params["type"] = transportType
	}

	result, err := s.read(ctx, "network_snapshot", func(tx neo4j.ManagedTransaction) (any, error) {
		// The year must exist even when it has no stations of the
		// requested type; an unknown year is NOT_FOUND, not an empty map.
		exists, err := yearExists(ctx, tx, year)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("year %d: %w", year, ErrNotFound)
		}

		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return collectSnapshot(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	snapshot := result.(*models.NetworkSnapshot)
	metrics.GraphStationsReturned.Observe(float64(len(snapshot.Nodes)))
	logging.Ctx(ctx).Debug().
		Int("year", year).
		Str("type", transportType).
		Int("stations", len(snapshot.Nodes)).
		Int("connections", len(snapshot.Relationships)).
		Msg("network snapshot loaded")

	return snapshot, nil
}

// GraphData returns the entire graph across all years. Serves the
// legacy full-export endpoint.
func (s *Store) GraphData(ctx context.Context) (*models.NetworkSnapshot, error) {
	result, err := s.read(ctx, "graph_data", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (s1:Station)
			OPTIONAL MATCH (s1)-[r:CONNECTS_TO]-(s2:Station)
			RETURN s1, r, s2`, nil)
		if err != nil {
			return nil, err
		}
		return collectSnapshot(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.NetworkSnapshot), nil
}

// yearExists checks for the Year node inside an open transaction.
func yearExists(ctx context.Context, tx neo4j.ManagedTransaction, year int) (bool, error) {
	res, err := tx.Run(ctx, `MATCH (y:Year {year: $year}) RETURN count(y) AS n`, map[string]any{"year": year})
	if err != nil {
		return false, err
	}
	record, err := res.Single(ctx)
	if err != nil {
		return false, err
	}
	n, _ := toInt(record.Values[0])
	return n > 0, nil
}

// collectSnapshot drains a s1/r/s2 result set into a deduplicated
// snapshot.
func collectSnapshot(ctx context.Context, res neo4j.ResultWithContext) (*models.NetworkSnapshot, error) {
	snapshot := &models.NetworkSnapshot{
		Nodes:         []models.Station{},
		Relationships: []models.Connection{},
	}
	seenNodes := make(map[string]struct{})
	seenRels := make(map[string]struct{})

	addNode := func(v interface{}) {
		node, ok := v.(dbtype.Node)
		if !ok {
			return
		}
		if _, seen := seenNodes[node.ElementId]; seen {
			return
		}
		seenNodes[node.ElementId] = struct{}{}
		snapshot.Nodes = append(snapshot.Nodes, stationFromNode(node))
	}

	for res.Next(ctx) {
		record := record3(res.Record())
		addNode(record[0])
		addNode(record[2])

		rel, ok := record[1].(dbtype.Relationship)
		if !ok {
			continue
		}
		if _, seen := seenRels[rel.ElementId]; seen {
			continue
		}
		seenRels[rel.ElementId] = struct{}{}
		snapshot.Relationships = append(snapshot.Relationships, connectionFromRelationship(rel))
	}

	return snapshot, res.Err()
}

// record3 pads a record to three values so collectSnapshot can index
// unconditionally.
func record3(r *neo4j.Record) [3]interface{} {
	var out [3]interface{}
	for i := 0; i < len(r.Values) && i < 3; i++ {
		out[i] = r.Values[i]
	}
	return out
}

// typeFilter renders the station type predicate for filtered snapshots.
func typeFilter(transportType, alias string) string {
	if transportType == "" {
		return ""
	}
	return "WHERE " + alias + ".type = $type"
}

// relTypeFilter renders the relationship type predicate.
func relTypeFilter(transportType string) string {
	if transportType == "" {
		return ""
	}
	return "WHERE r.transport_type = $type AND s2.type = $type"
}
