// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package navi talks to the Kakao Mobility navigation API and
// normalizes its multi-route responses into canonical Route records.
//
// Two call shapes are exposed: GetRoute fetches the single best route
// between two points and reduces it to a LegCost, and GetMultiRoutes
// fetches waypoint-based alternatives as a raw payload for
// normalization. Production deployments wrap the client in
// BreakerClient for circuit breaker protection.
package navi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/logging"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// API is the navigation provider surface consumed by the rest of the
// service. Implemented by KakaoClient and by BreakerClient.
type API interface {
	// GetRoute returns the summary cost of the best route between two
	// points. Any client-level failure (network, non-2xx, malformed
	// body, missing routes[0].summary) is an error.
	GetRoute(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error)

	// GetMultiRoutes returns the raw multi-route payload for a waypoint
	// request. Callers normalize it with Normalize.
	GetMultiRoutes(ctx context.Context, req MultiRouteRequest) (map[string]interface{}, error)
}

// KakaoClient is the HTTP client for the Kakao Mobility directions API.
// Safe for concurrent use.
type KakaoClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewKakaoClient creates a Kakao directions client from configuration.
// Outbound requests are rate limited to stay within the per-key quota;
// a non-positive RateLimitRPS disables the limiter.
func NewKakaoClient(cfg config.KakaoConfig) *KakaoClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	return &KakaoClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logging.WithComponent("navi"),
	}
}

// GetRoute fetches the single best route between two points and
// reduces it to a LegCost taken from routes[0].summary.
func (c *KakaoClient) GetRoute(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	start := time.Now()

	reqURL := fmt.Sprintf("%s/v1/directions?origin=%s&destination=%s",
		c.baseURL, formatPoint(origin), formatPoint(destination))

	payload, err := c.doJSON(ctx, http.MethodGet, reqURL, nil)
	metrics.RecordNaviRequest("directions", time.Since(start), err)
	if err != nil {
		return models.LegCost{}, err
	}

	cost, err := summaryCost(payload)
	if err != nil {
		c.logger.Debug().Err(err).Msg("directions response missing route summary")
		return models.LegCost{}, err
	}
	return cost, nil
}

// GetMultiRoutes fetches waypoint-based route alternatives and returns
// the raw provider payload.
func (c *KakaoClient) GetMultiRoutes(ctx context.Context, req MultiRouteRequest) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	reqURL := c.baseURL + "/v1/waypoints/directions"

	payload, err := c.doJSON(ctx, http.MethodPost, reqURL, req.payload())
	metrics.RecordNaviRequest("waypoints", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// ResolveLeg adapts GetRoute to the recommendation engine's leg
// resolver contract.
func (c *KakaoClient) ResolveLeg(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	return c.GetRoute(ctx, origin, destination)
}

// doJSON performs one authenticated request and decodes the JSON body.
func (c *KakaoClient) doJSON(ctx context.Context, method, reqURL string, body interface{}) (map[string]interface{}, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
		}
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("navigation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody := readBodyForError(resp.Body)
		return nil, fmt.Errorf("navigation API returned HTTP %d: %s", resp.StatusCode, errBody)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode navigation response: %w", err)
	}
	return payload, nil
}

// summaryCost extracts routes[0].summary from a directions payload.
func summaryCost(payload map[string]interface{}) (models.LegCost, error) {
	routes := asSlice(payload["routes"])
	if len(routes) == 0 {
		return models.LegCost{}, fmt.Errorf("directions response has no routes")
	}
	summary, ok := asMap(routes[0])["summary"].(map[string]interface{})
	if !ok {
		return models.LegCost{}, fmt.Errorf("directions response missing routes[0].summary")
	}
	fare := asMap(summary["fare"])
	return models.LegCost{
		Distance: asFloat(summary["distance"]),
		Duration: asFloat(summary["duration"]),
		Toll:     asFloat(fare["toll"]),
	}, nil
}

// formatPoint renders a coordinate as the provider's "lng,lat" query
// form.
func formatPoint(p models.GeoPoint) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// readBodyForError reads at most maxErrorBodySize bytes of a response
// body for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
