// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package navi

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/jihop-dev/gilro/internal/models"
)

// Provider identifies the navigation provider in normalized results.
const Provider = "kakao-navi"

// Normalize converts a raw multi-route provider payload into canonical
// Route records. Routes are enumerated in payload order and assigned
// sequential ids "r1".."rN".
//
// Normalization is total over any JSON-shaped input: a missing routes
// key yields an empty sequence, absent or malformed summary fields
// default to 0, a fare that is not a mapping defaults the toll to 0,
// and vertexes are taken only from the first road of the first section
// when that chain exists. Nothing here returns an error.
func Normalize(payload map[string]interface{}) models.MultiRouteResult {
	result := models.MultiRouteResult{
		Routes:   []models.Route{},
		Provider: Provider,
	}

	rawRoutes := asSlice(payload["routes"])
	for i, raw := range rawRoutes {
		route := asMap(raw)

		summary := asMap(route["summary"])
		fare := asMap(summary["fare"])

		result.Routes = append(result.Routes, models.Route{
			ID: routeID(i),
			Summary: models.LegCost{
				Distance: asFloat(summary["distance"]),
				Duration: asFloat(summary["duration"]),
				Toll:     asFloat(fare["toll"]),
			},
			Vertexes: firstRoadVertexes(route),
		})
	}

	return result
}

// NormalizeJSON decodes raw JSON bytes and normalizes them. The only
// possible error is a JSON syntax error; any well-formed document
// normalizes successfully.
func NormalizeJSON(data []byte) (models.MultiRouteResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.MultiRouteResult{}, err
	}
	return Normalize(payload), nil
}

// routeID derives the 1-based route id ("r1", "r2", ...) from a payload
// position.
func routeID(index int) string {
	return "r" + strconv.Itoa(index+1)
}

// firstRoadVertexes extracts the polyline vertex sequence from the
// first road of the first section, when present. An absent or malformed
// chain yields nil.
func firstRoadVertexes(route map[string]interface{}) []float64 {
	sections := asSlice(route["sections"])
	if len(sections) == 0 {
		return nil
	}
	roads := asSlice(asMap(sections[0])["roads"])
	if len(roads) == 0 {
		return nil
	}
	rawVertexes := asSlice(asMap(roads[0])["vertexes"])
	if len(rawVertexes) == 0 {
		return nil
	}

	vertexes := make([]float64, 0, len(rawVertexes))
	for _, v := range rawVertexes {
		vertexes = append(vertexes, asFloat(v))
	}
	return vertexes
}

// asMap returns v as a map, or an empty map when v is anything else.
func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// asSlice returns v as a slice, or nil when v is anything else.
func asSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return nil
}

// asFloat returns v as a float64, tolerating the numeric types JSON
// decoding can produce. Anything non-numeric is 0.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
