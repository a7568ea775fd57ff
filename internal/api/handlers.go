// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jihop-dev/gilro/internal/logging"
	"github.com/jihop-dev/gilro/internal/models"
	"github.com/jihop-dev/gilro/internal/narrator"
	"github.com/jihop-dev/gilro/internal/navi"
	"github.com/jihop-dev/gilro/internal/poi"
	"github.com/jihop-dev/gilro/internal/recommend"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// defaultMaxCandidates caps the candidate fetch when no limit is
// configured.
const defaultMaxCandidates = 100

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	repo          poi.Repository
	engine        *recommend.Engine
	navi          navi.API
	narrator      narrator.Narrator
	pinger        Pinger
	maxCandidates int
	startTime     time.Time
}

// NewHandler creates the endpoint handler. narrator and pinger may be
// nil when narration or database connectivity is disabled. A
// non-positive maxCandidates falls back to the default cap.
func NewHandler(repo poi.Repository, engine *recommend.Engine, naviClient navi.API, nar narrator.Narrator, pinger Pinger, maxCandidates int) *Handler {
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	return &Handler{
		repo:          repo,
		engine:        engine,
		navi:          naviClient,
		narrator:      nar,
		pinger:        pinger,
		maxCandidates: maxCandidates,
		startTime:     time.Now(),
	}
}

// RecommendResponse is the payload for POST /api/v1/recommend. Routes
// and Narration are present only when narration was requested and the
// waypoint routing succeeded.
type RecommendResponse struct {
	Recommendations []models.RankedRecommendation `json:"recommendations"`
	UserType        string                        `json:"user_type"`
	Routes          *models.MultiRouteResult      `json:"routes,omitempty"`
	Narration       *narrator.Narration           `json:"narration,omitempty"`
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.applyDefaults()
	if req.Limit > h.maxCandidates {
		req.Limit = h.maxCandidates
	}
	if err := validateEndpoints(req.Origin, req.Destination); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	candidates, err := h.repo.FetchCandidates(r.Context(), req.Limit, req.Offset)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	ranked, err := h.engine.Recommend(r.Context(), candidates, req.Origin, req.Destination, req.UserType, req.QueryEmbedding)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		rw.InternalError("Failed to generate recommendations")
		return
	}

	resp := RecommendResponse{
		Recommendations: ranked,
		UserType:        req.UserType,
	}
	if req.Narrate && len(ranked) > 0 {
		h.narrateRecommendations(r.Context(), &req, ranked, &resp)
	}

	rw.SuccessWithMeta(resp, &APIMeta{Count: len(ranked)})
}

// narrateRecommendations routes through the ranked POIs as waypoints
// and attaches the normalized routes plus, when a narrator is
// configured, their narration. Failures leave the ranking response
// intact.
func (h *Handler) narrateRecommendations(ctx context.Context, req *RecommendRequest, ranked []models.RankedRecommendation, resp *RecommendResponse) {
	waypoints := make([]models.GeoPoint, 0, len(ranked))
	for _, rec := range ranked {
		if len(waypoints) == navi.MaxWaypoints {
			break
		}
		waypoints = append(waypoints, rec.Location)
	}

	payload, err := h.navi.GetMultiRoutes(ctx, navi.MultiRouteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Waypoints:   waypoints,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Waypoint routing failed, returning ranking only")
		return
	}

	result := navi.Normalize(payload)
	resp.Routes = &result

	if h.narrator == nil {
		return
	}
	narration, err := h.narrator.Narrate(ctx, result, recommendContext(req, ranked))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Narration failed, returning routes without it")
		return
	}
	resp.Narration = &narration
}

// recommendContext summarizes the request and ranked POIs for the
// narration prompt.
func recommendContext(req *RecommendRequest, ranked []models.RankedRecommendation) string {
	var b strings.Builder
	b.WriteString(req.UserType)
	b.WriteString(" trip visiting: ")
	for i, rec := range ranked {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rec.Description)
	}
	if req.UserContext != "" {
		b.WriteString(". ")
		b.WriteString(req.UserContext)
	}
	return b.String()
}

// MultiRouteResponse is the payload for POST /api/v1/routes/multi.
type MultiRouteResponse struct {
	Result    models.MultiRouteResult `json:"result"`
	Narration *narrator.Narration     `json:"narration,omitempty"`
}

// MultiRoutes handles POST /api/v1/routes/multi.
func (h *Handler) MultiRoutes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req MultiRouteAPIRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := validateEndpoints(req.Origin, req.Destination); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	naviReq := req.toNaviRequest()
	if err := naviReq.Validate(); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	payload, err := h.navi.GetMultiRoutes(r.Context(), naviReq)
	if err != nil {
		if errors.Is(err, navi.ErrTooManyWaypoints) {
			rw.BadRequest(err.Error())
			return
		}
		rw.ExternalServiceError("kakao-navi", err)
		return
	}

	result := navi.Normalize(payload)
	resp := MultiRouteResponse{Result: result}

	if req.Narrate && h.narrator != nil {
		narration, err := h.narrator.Narrate(r.Context(), result, req.UserContext)
		if err != nil {
			// Routes are still useful without prose; degrade quietly.
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Narration failed, returning routes without it")
		} else {
			resp.Narration = &narration
		}
	}

	rw.SuccessWithMeta(resp, &APIMeta{Count: len(result.Routes)})
}

// HealthStatus is the payload for GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	NarrationEnabled  bool    `json:"narration_enabled"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.pinger != nil && h.pinger.Ping(r.Context()) == nil

	status := "healthy"
	if h.pinger != nil && !dbConnected {
		status = "degraded"
	}

	WriteSuccess(w, r, HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		NarrationEnabled:  h.narrator != nil,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles GET /api/v1/health/live. Liveness never touches
// dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			NewResponseWriter(w, r).ServiceUnavailable("Database not reachable")
			return
		}
	}
	WriteSuccess(w, r, map[string]string{"status": "ready"})
}
