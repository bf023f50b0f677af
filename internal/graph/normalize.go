// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package graph

import (
	"fmt"
	"math"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// The source datasets were loaded over many years with inconsistent
// typing: stop_id is sometimes a string and sometimes an integer,
// coordinates may be int or float, and the per-line attributes are
// stored as a scalar when a segment carries a single line but as a list
// when it carries several. All coercion is isolated here so the query
// code deals with clean models only.

// stationFromNode maps a Station node onto the domain model.
func stationFromNode(node dbtype.Node) models.Station {
	props := node.Props

	s := models.Station{
		ID:          node.ElementId,
		StopID:      toString(props["stop_id"]),
		Name:        toString(props["name"]),
		Type:        toString(props["type"]),
		EastWest:    toString(props["east_west"]),
		Description: toString(props["description"]),
	}

	lat, latOK := toFloat(props["latitude"])
	lng, lngOK := toFloat(props["longitude"])
	// Half-geocoded stations are treated as not geocoded at all; a lone
	// coordinate cannot be placed on a map.
	if latOK && lngOK && isFinite(lat) && isFinite(lng) {
		s.Latitude = &lat
		s.Longitude = &lng
	}

	return s
}

// connectionFromRelationship maps a CONNECTS_TO relationship onto the
// domain model.
func connectionFromRelationship(rel dbtype.Relationship) models.Connection {
	props := rel.Props

	hourlyCapacity, _ := toFloat(props["hourly_capacity"])
	hourlyServices, _ := toFloat(props["hourly_services"])
	distance, _ := toFloat(props["distance_meters"])

	return models.Connection{
		ID:          rel.ElementId,
		StartNodeID: rel.StartElementId,
		EndNodeID:   rel.EndElementId,
		Type:        rel.Type,
		Properties: models.ConnectionProperties{
			TransportType:  toString(props["transport_type"]),
			Capacities:     toFloatSlice(props["capacities"]),
			Frequencies:    toFloatSlice(props["frequencies"]),
			LineIDs:        toStringSlice(props["line_ids"]),
			LineNames:      toStringSlice(props["line_names"]),
			DistanceMeters: distance,
			HourlyCapacity: hourlyCapacity,
			HourlyServices: hourlyServices,
		},
	}
}

// toString coerces a property value to a string. Numeric stop IDs come
// back from the driver as int64.
func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toFloat coerces a numeric property to float64. The second return
// value is false for nil or non-numeric values.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toFloatSlice coerces a property to []float64, promoting a scalar to a
// single-element slice. Unparseable elements are dropped.
func toFloatSlice(v interface{}) []float64 {
	switch val := v.(type) {
	case nil:
		return []float64{}
	case []interface{}:
		out := make([]float64, 0, len(val))
		for _, item := range val {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		if f, ok := toFloat(val); ok {
			return []float64{f}
		}
		return []float64{}
	}
}

// toStringSlice coerces a property to []string, promoting a scalar to a
// single-element slice.
func toStringSlice(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item != nil {
				out = append(out, toString(item))
			}
		}
		return out
	case []string:
		return val
	default:
		return []string{toString(val)}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toInt coerces a numeric property to int.
func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int64:
		return int(val), true
	case int:
		return val, true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}
