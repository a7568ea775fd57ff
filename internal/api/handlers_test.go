// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/models"
	"github.com/jihop-dev/gilro/internal/narrator"
	"github.com/jihop-dev/gilro/internal/navi"
	"github.com/jihop-dev/gilro/internal/poi"
	"github.com/jihop-dev/gilro/internal/recommend"
)

type fakeLegResolver struct{}

func (f *fakeLegResolver) ResolveLeg(_ context.Context, _, _ models.GeoPoint) (models.LegCost, error) {
	return models.LegCost{Distance: 1000, Duration: 300, Toll: 0}, nil
}

type fakeNaviAPI struct {
	payload map[string]interface{}
	err     error
	gotReq  navi.MultiRouteRequest
}

func (f *fakeNaviAPI) GetRoute(_ context.Context, _, _ models.GeoPoint) (models.LegCost, error) {
	return models.LegCost{}, fmt.Errorf("not used")
}

func (f *fakeNaviAPI) GetMultiRoutes(_ context.Context, req navi.MultiRouteRequest) (map[string]interface{}, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type fakeNarrator struct {
	narration narrator.Narration
	err       error
	called    bool
}

func (f *fakeNarrator) Narrate(_ context.Context, _ models.MultiRouteResult, _ string) (narrator.Narration, error) {
	f.called = true
	return f.narration, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func seededRepo() *poi.InMemoryRepository {
	return poi.NewInMemoryRepository([]models.POICandidate{
		{
			ID:          "poi-1",
			Address:     "해운대구",
			Location:    models.GeoPoint{Lat: 35.1587, Lng: 129.1604},
			Description: "해운대 해수욕장",
			Embedding:   []float64{1, 0, 0},
		},
		{
			ID:          "poi-2",
			Address:     "수영구",
			Location:    models.GeoPoint{Lat: 35.1531, Lng: 129.1187},
			Description: "광안리 해변",
			Embedding:   []float64{0, 1, 0},
		},
	})
}

func newTestServer(t *testing.T, naviAPI navi.API, nar narrator.Narrator, pinger Pinger) *httptest.Server {
	t.Helper()
	return newTestServerWithRepo(t, seededRepo(), naviAPI, nar, pinger)
}

func newTestServerWithRepo(t *testing.T, repo poi.Repository, naviAPI navi.API, nar narrator.Narrator, pinger Pinger) *httptest.Server {
	t.Helper()
	engine := recommend.NewEngine(&fakeLegResolver{}, nil, recommend.DefaultConfig())
	handler := NewHandler(repo, engine, naviAPI, nar, pinger, 25)
	router := NewRouter(handler, config.APIConfig{
		RateLimitReqs: 1000,
		CORSOrigins:   []string{"*"},
	})
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp, envelope
}

func TestRecommendEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1796,129.0756],"user_type":"tourist"}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got error %+v", envelope.Error)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-encode data: %v", err)
	}
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	if len(payload.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(payload.Recommendations))
	}
	for i, rec := range payload.Recommendations {
		if rec.Order != i+1 {
			t.Errorf("recommendation %d has order %d", i, rec.Order)
		}
		if rec.Distance != 2000 || rec.Duration != 600 {
			t.Errorf("recommendation %s totals = %.0f/%.0f, want 2000/600", rec.ID, rec.Distance, rec.Duration)
		}
	}
	if envelope.Meta == nil || envelope.Meta.Count != 2 {
		t.Errorf("meta count missing or wrong: %+v", envelope.Meta)
	}
}

func TestRecommendDefaultsToTourist(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1796,129.0756]}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for omitted user_type", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserType != "tourist" {
		t.Errorf("user_type = %q, want tourist default", payload.UserType)
	}
}

func TestRecommendAcceptsAnyUserType(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1796,129.0756],"user_type":"business"}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown preference string", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserType != "business" {
		t.Errorf("user_type = %q, want business echoed back", payload.UserType)
	}
	if len(payload.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	// Anything other than "tourist" is scored with the citizen weight.
	for _, rec := range payload.Recommendations {
		if rec.Score != 1.2 {
			t.Errorf("recommendation %s score = %g, want 1.2", rec.ID, rec.Score)
		}
	}
}

type capturingRepo struct {
	*poi.InMemoryRepository
	gotLimit int
}

func (r *capturingRepo) FetchCandidates(ctx context.Context, limit, offset int) ([]models.POICandidate, error) {
	r.gotLimit = limit
	return r.InMemoryRepository.FetchCandidates(ctx, limit, offset)
}

func TestRecommendLimitClampedToConfiguredCap(t *testing.T) {
	repo := &capturingRepo{InMemoryRepository: seededRepo()}
	server := newTestServerWithRepo(t, repo, &fakeNaviAPI{}, nil, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1796,129.0756],"limit":500}`
	resp, _ := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if repo.gotLimit != 25 {
		t.Errorf("fetch limit = %d, want clamp to configured cap 25", repo.gotLimit)
	}
}

func TestRecommendWithNarration(t *testing.T) {
	naviAPI := &fakeNaviAPI{payload: multiRoutePayload()}
	nar := &fakeNarrator{
		narration: narrator.Narration{Text: "Start at Haeundae."},
	}
	server := newTestServer(t, naviAPI, nar, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1796,129.0756],"narrate":true,"user_context":"one day trip"}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !nar.called {
		t.Fatal("narrator was not invoked")
	}
	if len(naviAPI.gotReq.Waypoints) != 2 {
		t.Errorf("waypoint routing got %d waypoints, want 2 ranked POIs", len(naviAPI.gotReq.Waypoints))
	}

	data, _ := json.Marshal(envelope.Data)
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Routes == nil || len(payload.Routes.Routes) != 2 {
		t.Errorf("routes = %+v, want normalized alternatives", payload.Routes)
	}
	if payload.Narration == nil || payload.Narration.Text != "Start at Haeundae." {
		t.Errorf("narration = %+v", payload.Narration)
	}
}

func TestRecommendNarrationRoutingFailureDegrades(t *testing.T) {
	naviAPI := &fakeNaviAPI{err: fmt.Errorf("upstream down")}
	server := newTestServer(t, naviAPI, &fakeNarrator{}, nil)

	body := `{"origin":[35.1,129.0],"destination":[35.2,129.1],"narrate":true}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite routing failure", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var payload RecommendResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Routes != nil || payload.Narration != nil {
		t.Errorf("routes/narration should be absent, got %+v / %+v", payload.Routes, payload.Narration)
	}
	if len(payload.Recommendations) != 2 {
		t.Errorf("ranking should survive, got %d recommendations", len(payload.Recommendations))
	}
}

func TestRecommendValidation(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{
			name: "negative limit",
			body: `{"origin":[35.1,129.0],"destination":[35.2,129.1],"limit":-3}`,
			code: ErrCodeValidationFailed,
		},
		{
			name: "latitude out of range",
			body: `{"origin":[95.0,129.0],"destination":[35.2,129.1],"user_type":"tourist"}`,
			code: ErrCodeBadRequest,
		},
		{
			name: "malformed json",
			body: `{"origin":`,
			code: ErrCodeBadRequest,
		},
		{
			name: "origin not a pair",
			body: `{"origin":[35.1],"destination":[35.2,129.1],"user_type":"tourist"}`,
			code: ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope := postJSON(t, server.URL+"/api/v1/recommend", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.code)
			}
		})
	}
}

func multiRoutePayload() map[string]interface{} {
	return map[string]interface{}{
		"routes": []interface{}{
			map[string]interface{}{
				"summary": map[string]interface{}{
					"distance": 1000.0,
					"duration": 600.0,
					"fare":     map[string]interface{}{"toll": 500.0},
				},
			},
			map[string]interface{}{
				"summary": map[string]interface{}{
					"distance": 1400.0,
					"duration": 480.0,
				},
			},
		},
	}
}

func TestMultiRoutesEndpoint(t *testing.T) {
	naviAPI := &fakeNaviAPI{payload: multiRoutePayload()}
	server := newTestServer(t, naviAPI, nil, nil)

	body := `{"origin":[35.1151,129.0403],"destination":[35.1587,129.1604],"priority":"TIME","alternatives":false}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/routes/multi", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var payload MultiRouteResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	if payload.Result.Provider != "kakao-navi" {
		t.Errorf("provider = %q", payload.Result.Provider)
	}
	if len(payload.Result.Routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(payload.Result.Routes))
	}
	if payload.Result.Routes[0].ID != "r1" || payload.Result.Routes[0].Summary.Toll != 500 {
		t.Errorf("first route = %+v", payload.Result.Routes[0])
	}
	if payload.Result.Routes[1].ID != "r2" || payload.Result.Routes[1].Summary.Toll != 0 {
		t.Errorf("second route = %+v", payload.Result.Routes[1])
	}
	if payload.Narration != nil {
		t.Error("narration should be absent when not requested")
	}

	if naviAPI.gotReq.Options.Priority != "TIME" {
		t.Errorf("priority not passed through: %+v", naviAPI.gotReq.Options)
	}
	if !naviAPI.gotReq.Options.NoAlternatives {
		t.Error("alternatives=false should disable alternatives")
	}
}

func TestMultiRoutesWaypointCap(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{payload: multiRoutePayload()}, nil, nil)

	var waypoints []string
	for i := 0; i < navi.MaxWaypoints+1; i++ {
		waypoints = append(waypoints, "[35.1,129.0]")
	}
	body := fmt.Sprintf(
		`{"origin":[35.1,129.0],"destination":[35.2,129.1],"waypoints":[%s]}`,
		strings.Join(waypoints, ","),
	)

	resp, envelope := postJSON(t, server.URL+"/api/v1/routes/multi", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeBadRequest {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestMultiRoutesExternalFailure(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{err: fmt.Errorf("upstream timeout")}, nil, nil)

	body := `{"origin":[35.1,129.0],"destination":[35.2,129.1]}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/routes/multi", body)

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeExternalServiceFail {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestMultiRoutesWithNarration(t *testing.T) {
	nar := &fakeNarrator{
		narration: narrator.Narration{
			Text: "Take the coastal road.",
			Summary: &narrator.Summary{
				Selected: []narrator.SelectedRoute{{RouteID: "r1", Reason: "scenic"}},
			},
		},
	}
	server := newTestServer(t, &fakeNaviAPI{payload: multiRoutePayload()}, nar, nil)

	body := `{"origin":[35.1,129.0],"destination":[35.2,129.1],"narrate":true,"user_context":"first visit"}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/routes/multi", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !nar.called {
		t.Fatal("narrator was not invoked")
	}

	data, _ := json.Marshal(envelope.Data)
	var payload MultiRouteResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Narration == nil || payload.Narration.Text != "Take the coastal road." {
		t.Errorf("narration = %+v", payload.Narration)
	}
}

func TestMultiRoutesNarrationFailureDegrades(t *testing.T) {
	nar := &fakeNarrator{err: fmt.Errorf("model unavailable")}
	server := newTestServer(t, &fakeNaviAPI{payload: multiRoutePayload()}, nar, nil)

	body := `{"origin":[35.1,129.0],"destination":[35.2,129.1],"narrate":true}`
	resp, envelope := postJSON(t, server.URL+"/api/v1/routes/multi", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite narration failure", resp.StatusCode)
	}

	data, _ := json.Marshal(envelope.Data)
	var payload MultiRouteResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Narration != nil {
		t.Error("narration should be dropped on failure")
	}
	if len(payload.Result.Routes) != 2 {
		t.Errorf("routes should still be returned, got %d", len(payload.Result.Routes))
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("no database configured", func(t *testing.T) {
		server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

		resp, envelope := getJSON(t, server.URL+"/api/v1/health")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		data, _ := json.Marshal(envelope.Data)
		var health HealthStatus
		if err := json.Unmarshal(data, &health); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if health.Status != "healthy" || health.DatabaseConnected {
			t.Errorf("health = %+v", health)
		}
	})

	t.Run("database down", func(t *testing.T) {
		server := newTestServer(t, &fakeNaviAPI{}, nil, &fakePinger{err: fmt.Errorf("connection refused")})

		resp, envelope := getJSON(t, server.URL+"/api/v1/health")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		data, _ := json.Marshal(envelope.Data)
		var health HealthStatus
		if err := json.Unmarshal(data, &health); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if health.Status != "degraded" {
			t.Errorf("status = %q, want degraded", health.Status)
		}

		readyResp, _ := getJSON(t, server.URL+"/api/v1/health/ready")
		if readyResp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("ready status = %d, want 503", readyResp.StatusCode)
		}
	})

	t.Run("liveness always up", func(t *testing.T) {
		server := newTestServer(t, &fakeNaviAPI{}, nil, &fakePinger{err: fmt.Errorf("down")})

		resp, _ := getJSON(t, server.URL+"/api/v1/health/live")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("live status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeNaviAPI{}, nil, nil)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func getJSON(t *testing.T, url string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp, envelope
}
