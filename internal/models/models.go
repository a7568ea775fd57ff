// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package models defines the core data types shared across the service:
// geographic points, POI candidates, leg costs, normalized routes, and
// ranked recommendations.
package models

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// GeoPoint is a latitude/longitude pair. The API wire format is the
// two-element array [lat, lng] used by the Kakao-facing clients, so the
// type carries custom JSON marshaling. Values are not range-checked here;
// request validation happens at the API boundary.
type GeoPoint struct {
	Lat float64 `koanf:"lat"`
	Lng float64 `koanf:"lng"`
}

// MarshalJSON encodes the point as [lat, lng].
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

// UnmarshalJSON decodes a [lat, lng] two-element array.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("geo point must be a [lat, lng] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("geo point must have exactly 2 elements, got %d", len(pair))
	}
	if !isFinite(pair[0]) || !isFinite(pair[1]) {
		return fmt.Errorf("geo point coordinates must be finite")
	}
	p.Lat = pair[0]
	p.Lng = pair[1]
	return nil
}

// isFinite reports whether f is neither NaN nor an infinity.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// POICandidate is a point of interest under consideration, as returned by
// the POI repository. Immutable within a recommendation request.
type POICandidate struct {
	// ID is an opaque identifier, unique within one request.
	ID string `json:"id"`

	// Address is the human-readable address of the POI.
	Address string `json:"address"`

	// Location is the POI coordinate.
	Location GeoPoint `json:"location"`

	// Description is free text, possibly empty.
	Description string `json:"description"`

	// Embedding is the content embedding vector. It may be empty and its
	// length is not required to match across candidates.
	Embedding []float64 `json:"embedding,omitempty"`
}

// LegCost is the travel cost of one directed leg (or one full route summary).
type LegCost struct {
	// Distance in meters.
	Distance float64 `json:"distance"`

	// Duration in seconds.
	Duration float64 `json:"duration"`

	// Toll in currency units. Zero when the provider reports none.
	Toll float64 `json:"toll"`
}

// Add returns the element-wise sum of two leg costs.
func (c LegCost) Add(other LegCost) LegCost {
	return LegCost{
		Distance: c.Distance + other.Distance,
		Duration: c.Duration + other.Duration,
		Toll:     c.Toll + other.Toll,
	}
}

// Route is one normalized multi-route alternative. IDs are assigned from
// provider response order ("r1", "r2", ...) and are stable only within a
// single normalization call.
type Route struct {
	ID      string  `json:"id"`
	Summary LegCost `json:"summary"`

	// Vertexes is the flat polyline vertex sequence of the first road of
	// the first section, when the provider supplied one. Nil otherwise.
	Vertexes []float64 `json:"vertexes,omitempty"`
}

// MultiRouteResult is the canonical output of route normalization.
type MultiRouteResult struct {
	Routes   []Route `json:"routes"`
	Provider string  `json:"provider"`
}

// GuideText carries per-audience guide strings for a POI.
type GuideText struct {
	Tourist string `json:"tourist"`
	Citizen string `json:"citizen"`
}

// RankedRecommendation is one scored, ordered recommendation.
type RankedRecommendation struct {
	ID          string   `json:"id"`
	Address     string   `json:"address"`
	Location    GeoPoint `json:"coords"`
	Description string   `json:"description"`

	// Similarity is the clamped cosine similarity in [-1, 1].
	Similarity float64 `json:"similarity"`

	// Distance and Duration are the two-leg sums (origin→POI plus POI→destination).
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`

	// Score is similarity scaled by the preference weight. Sole ranking key.
	Score float64 `json:"score"`

	Guide GuideText `json:"guide"`

	// Order is the 1-based rank position, assigned after sorting.
	Order int `json:"order"`
}
