// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// UpdateStationLocation sets the coordinates of the station identified
// by stopID and returns the updated station. stop_id is compared as a
// string because older dataset loads stored it as an integer.
func (s *Store) UpdateStationLocation(ctx context.Context, stopID string, lat, lng float64) (*models.Station, error) {
	result, err := s.write(ctx, "update_station_location", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (s:Station)
			WHERE toString(s.stop_id) = $stop_id
			SET s.latitude = $latitude, s.longitude = $longitude
			RETURN s`,
			map[string]any{
				"stop_id":   stopID,
				"latitude":  lat,
				"longitude": lng,
			})
		if err != nil {
			return nil, err
		}

		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("station %s: %w", stopID, ErrNotFound)
		}

		node, ok := res.Record().Values[0].(dbtype.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected record shape for station %s", stopID)
		}

		// Drain in case the stop_id matches stations in several years;
		// they all received the same coordinates.
		for res.Next(ctx) {
		}

		station := stationFromNode(node)
		return &station, res.Err()
	})
	if err != nil {
		return nil, err
	}

	station := result.(*models.Station)
	logging.Ctx(ctx).Debug().
		Str("stop_id", stopID).
		Msg("station location updated")

	return station, nil
}

// StationYears returns the snapshot years the station appears in and
// its transport type. The handlers use this for targeted cache
// invalidation after a coordinate update.
func (s *Store) StationYears(ctx context.Context, stopID string) ([]int, string, error) {
	result, err := s.read(ctx, "station_years", func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (s:Station)-[:IN_YEAR]->(y:Year)
			WHERE toString(s.stop_id) = $stop_id
			RETURN y.year AS year, s.type AS type
			ORDER BY year`,
			map[string]any{"stop_id": stopID})
		if err != nil {
			return nil, err
		}

		var years []int
		var stationType string
		for res.Next(ctx) {
			record := res.Record()
			if year, ok := toInt(record.Values[0]); ok {
				years = append(years, year)
			}
			if stationType == "" {
				stationType = toString(record.Values[1])
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		if len(years) == 0 {
			return nil, fmt.Errorf("station %s: %w", stopID, ErrNotFound)
		}

		return &stationYearsResult{years: years, stationType: stationType}, nil
	})
	if err != nil {
		return nil, "", err
	}

	r := result.(*stationYearsResult)
	return r.years, r.stationType, nil
}

type stationYearsResult struct {
	years       []int
	stationType string
}
