// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package navi

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jihop-dev/gilro/internal/models"
)

func TestMultiRouteRequestValidate(t *testing.T) {
	req := MultiRouteRequest{
		Waypoints: make([]models.GeoPoint, MaxWaypoints),
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() with %d waypoints = %v, want nil", MaxWaypoints, err)
	}

	req.Waypoints = make([]models.GeoPoint, MaxWaypoints+1)
	if err := req.Validate(); !errors.Is(err, ErrTooManyWaypoints) {
		t.Errorf("Validate() = %v, want ErrTooManyWaypoints", err)
	}
}

func TestPayloadDefaults(t *testing.T) {
	req := MultiRouteRequest{
		Origin:      models.GeoPoint{Lat: 35.1, Lng: 129.0},
		Destination: models.GeoPoint{Lat: 35.2, Lng: 129.1},
	}

	body := req.payload()

	if body["priority"] != "RECOMMEND" {
		t.Errorf("priority = %v, want RECOMMEND", body["priority"])
	}
	if body["car_fuel"] != "GASOLINE" {
		t.Errorf("car_fuel = %v, want GASOLINE", body["car_fuel"])
	}
	if body["car_hipass"] != false {
		t.Errorf("car_hipass = %v, want false", body["car_hipass"])
	}
	if body["alternatives"] != true {
		t.Errorf("alternatives = %v, want true", body["alternatives"])
	}
	if body["road_details"] != false {
		t.Errorf("road_details = %v, want false", body["road_details"])
	}
	if body["summary"] != false {
		t.Errorf("summary = %v, want false", body["summary"])
	}
	for _, key := range []string{"car_type", "avoid", "roadevent"} {
		if _, ok := body[key]; ok {
			t.Errorf("optional key %q present in default payload", key)
		}
	}

	origin := body["origin"].(map[string]interface{})
	if origin["x"] != 129.0 || origin["y"] != 35.1 {
		t.Errorf("origin = %v, want x=129.0 y=35.1", origin)
	}
}

func TestPayloadOptionsApplied(t *testing.T) {
	carType := 1
	roadEvent := 2
	req := MultiRouteRequest{
		Origin:      models.GeoPoint{Lat: 35.1, Lng: 129.0},
		Destination: models.GeoPoint{Lat: 35.2, Lng: 129.1},
		Waypoints: []models.GeoPoint{
			{Lat: 35.15, Lng: 129.05},
		},
		Options: MultiRouteOptions{
			Priority:       "TIME",
			CarFuel:        "DIESEL",
			CarType:        &carType,
			CarHipass:      true,
			NoAlternatives: true,
			RoadDetails:    true,
			SummaryOnly:    true,
			Avoid:          []string{"toll", "motorway"},
			RoadEvent:      &roadEvent,
		},
	}

	body := req.payload()

	if body["priority"] != "TIME" {
		t.Errorf("priority = %v, want TIME", body["priority"])
	}
	if body["car_fuel"] != "DIESEL" {
		t.Errorf("car_fuel = %v, want DIESEL", body["car_fuel"])
	}
	if body["car_type"] != 1 {
		t.Errorf("car_type = %v, want 1", body["car_type"])
	}
	if body["alternatives"] != false {
		t.Errorf("alternatives = %v, want false", body["alternatives"])
	}
	if body["roadevent"] != 2 {
		t.Errorf("roadevent = %v, want 2", body["roadevent"])
	}
	if !reflect.DeepEqual(body["avoid"], []string{"toll", "motorway"}) {
		t.Errorf("avoid = %v", body["avoid"])
	}

	waypoints := body["waypoints"].([]map[string]interface{})
	if len(waypoints) != 1 {
		t.Fatalf("waypoints = %v, want 1 entry", waypoints)
	}
	if waypoints[0]["name"] != "wp1" || waypoints[0]["x"] != 129.05 {
		t.Errorf("waypoint[0] = %v", waypoints[0])
	}
}

func TestNormalizeAvoid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{"nil", nil, nil},
		{"pipe string", "toll|motorway|ferries", []string{"toll", "motorway", "ferries"}},
		{"single value string", "toll", []string{"toll"}},
		{"empty string", "", nil},
		{"pipes only", "||", nil},
		{"string slice", []string{"toll", "ferries"}, []string{"toll", "ferries"}},
		{"string slice with blanks", []string{" toll ", ""}, []string{"toll"}},
		{"interface slice", []interface{}{"toll", "uturn"}, []string{"toll", "uturn"}},
		{"interface slice mixed", []interface{}{"toll", 42}, []string{"toll"}},
		{"unknown shape", 12.5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAvoid(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAvoid(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
