// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package navi

import (
	"fmt"
	"strings"

	"github.com/jihop-dev/gilro/internal/models"
)

// MaxWaypoints is the provider's cap on waypoints per multi-route
// request. Enforced here because the provider rejects larger requests
// with an opaque error.
const MaxWaypoints = 30

// Kakao request defaults.
const (
	DefaultPriority = "RECOMMEND"
	DefaultCarFuel  = "GASOLINE"
)

// ErrTooManyWaypoints is returned when a multi-route request exceeds
// MaxWaypoints.
var ErrTooManyWaypoints = fmt.Errorf("too many waypoints: provider limit is %d", MaxWaypoints)

// MultiRouteOptions carries the optional knobs of a multi-route
// directions request. The zero value yields the provider defaults.
type MultiRouteOptions struct {
	// Priority is the route selection strategy: RECOMMEND, TIME, or
	// DISTANCE. Empty means RECOMMEND.
	Priority string

	// CarFuel is the fuel type used for fare estimation. Empty means
	// GASOLINE.
	CarFuel string

	// CarType is the optional vehicle class. Omitted when nil.
	CarType *int

	// CarHipass reports whether the vehicle has a HI-PASS transponder.
	CarHipass bool

	// Alternatives requests alternative routes. The engine always wants
	// alternatives, so the request default is true; this flag allows
	// turning them off explicitly.
	NoAlternatives bool

	// RoadDetails requests per-road detail in the response.
	RoadDetails bool

	// SummaryOnly requests summary-only responses.
	SummaryOnly bool

	// Avoid lists road categories to avoid. Omitted when empty.
	Avoid []string

	// RoadEvent is the optional road event reflection level. Omitted
	// when nil.
	RoadEvent *int
}

// MultiRouteRequest is one multi-route directions request.
type MultiRouteRequest struct {
	Origin      models.GeoPoint
	Destination models.GeoPoint
	Waypoints   []models.GeoPoint
	Options     MultiRouteOptions
}

// Validate checks provider-imposed request limits.
func (r MultiRouteRequest) Validate() error {
	if len(r.Waypoints) > MaxWaypoints {
		return ErrTooManyWaypoints
	}
	return nil
}

// payload builds the provider request body. Defaults are materialized
// here so the wire format is explicit regardless of the options' zero
// values.
func (r MultiRouteRequest) payload() map[string]interface{} {
	opts := r.Options

	priority := opts.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	carFuel := opts.CarFuel
	if carFuel == "" {
		carFuel = DefaultCarFuel
	}

	waypoints := make([]map[string]interface{}, 0, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		waypoints = append(waypoints, map[string]interface{}{
			"name": fmt.Sprintf("wp%d", i+1),
			"x":    wp.Lng,
			"y":    wp.Lat,
		})
	}

	body := map[string]interface{}{
		"origin":       pointPayload(r.Origin),
		"destination":  pointPayload(r.Destination),
		"waypoints":    waypoints,
		"priority":     priority,
		"car_fuel":     carFuel,
		"car_hipass":   opts.CarHipass,
		"alternatives": !opts.NoAlternatives,
		"road_details": opts.RoadDetails,
		"summary":      opts.SummaryOnly,
	}

	if opts.CarType != nil {
		body["car_type"] = *opts.CarType
	}
	if len(opts.Avoid) > 0 {
		body["avoid"] = opts.Avoid
	}
	if opts.RoadEvent != nil {
		body["roadevent"] = *opts.RoadEvent
	}

	return body
}

// pointPayload renders a coordinate in the provider's x/y form.
func pointPayload(p models.GeoPoint) map[string]interface{} {
	return map[string]interface{}{
		"x": p.Lng,
		"y": p.Lat,
	}
}

// NormalizeAvoid accepts the avoid option in either of its accepted
// request shapes, an array of strings or a single pipe-delimited
// string, and normalizes it to a string slice. Unknown shapes and
// empty entries normalize to nil.
func NormalizeAvoid(v interface{}) []string {
	switch avoid := v.(type) {
	case nil:
		return nil
	case string:
		return splitAvoid(avoid)
	case []string:
		out := make([]string, 0, len(avoid))
		for _, s := range avoid {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(avoid))
		for _, item := range avoid {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// splitAvoid splits a pipe-delimited avoid string.
func splitAvoid(s string) []string {
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
