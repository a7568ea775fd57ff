// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jihop-dev/gilro/internal/models"
	"github.com/jihop-dev/gilro/internal/navi"
	"github.com/jihop-dev/gilro/internal/validation"
)

// maxRequestBodySize caps request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// defaultRecommendLimit caps the candidate fetch when the request does
// not specify one.
const defaultRecommendLimit = 5

// RecommendRequest is the body for POST /api/v1/recommend. UserType
// defaults to "tourist" and Limit to 5 when omitted. UserType is not
// an enum: any value other than "tourist" is scored with the citizen
// weight, so unknown preference strings still get a ranking.
type RecommendRequest struct {
	Origin         models.GeoPoint `json:"origin"`
	Destination    models.GeoPoint `json:"destination"`
	UserType       string          `json:"user_type"`
	QueryEmbedding []float64       `json:"query_embedding,omitempty"`
	Limit          int             `json:"limit" validate:"omitempty,min=1"`
	Offset         int             `json:"offset" validate:"omitempty,min=0"`

	// Narrate additionally routes through the ranked POIs as waypoints
	// and asks the narrator to explain the alternatives.
	Narrate     bool   `json:"narrate,omitempty"`
	UserContext string `json:"user_context,omitempty"`
}

// applyDefaults fills omitted fields.
func (r *RecommendRequest) applyDefaults() {
	if r.UserType == "" {
		r.UserType = "tourist"
	}
	if r.Limit <= 0 {
		r.Limit = defaultRecommendLimit
	}
}

// MultiRouteAPIRequest is the body for POST /api/v1/routes/multi.
// Avoid accepts either a pipe-delimited string or an array of strings,
// matching what upstream route providers accept.
type MultiRouteAPIRequest struct {
	Origin      models.GeoPoint   `json:"origin"`
	Destination models.GeoPoint   `json:"destination"`
	Waypoints   []models.GeoPoint `json:"waypoints,omitempty"`
	Priority    string            `json:"priority,omitempty" validate:"omitempty,oneof=RECOMMEND TIME DISTANCE"`
	CarFuel     string            `json:"car_fuel,omitempty" validate:"omitempty,oneof=GASOLINE DIESEL LPG"`
	CarType     *int              `json:"car_type,omitempty"`
	CarHipass   bool              `json:"car_hipass,omitempty"`
	Avoid       interface{}       `json:"avoid,omitempty"`
	RoadEvent   *int              `json:"roadevent,omitempty"`
	// Alternatives defaults to true when omitted.
	Alternatives *bool `json:"alternatives,omitempty"`
	RoadDetails  bool  `json:"road_details,omitempty"`
	SummaryOnly  bool  `json:"summary,omitempty"`

	// Narrate requests a natural-language narration of the normalized
	// routes; UserContext is free-form traveler context for the prompt.
	Narrate     bool   `json:"narrate,omitempty"`
	UserContext string `json:"user_context,omitempty"`
}

// toNaviRequest converts the API body into a provider request.
func (r *MultiRouteAPIRequest) toNaviRequest() navi.MultiRouteRequest {
	opts := navi.MultiRouteOptions{
		Priority:    r.Priority,
		CarFuel:     r.CarFuel,
		CarType:     r.CarType,
		CarHipass:   r.CarHipass,
		Avoid:       navi.NormalizeAvoid(r.Avoid),
		RoadEvent:   r.RoadEvent,
		RoadDetails: r.RoadDetails,
		SummaryOnly: r.SummaryOnly,
	}
	if r.Alternatives != nil && !*r.Alternatives {
		opts.NoAlternatives = true
	}
	return navi.MultiRouteRequest{
		Origin:      r.Origin,
		Destination: r.Destination,
		Waypoints:   r.Waypoints,
		Options:     opts,
	}
}

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation. A false return means an error response was already
// written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// validatePoint rejects coordinates outside WGS84 bounds.
func validatePoint(name string, p models.GeoPoint) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%s latitude %.6f out of range [-90, 90]", name, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%s longitude %.6f out of range [-180, 180]", name, p.Lng)
	}
	return nil
}

// validateEndpoints checks origin and destination bounds together.
func validateEndpoints(origin, destination models.GeoPoint) error {
	if err := validatePoint("origin", origin); err != nil {
		return err
	}
	return validatePoint("destination", destination)
}
