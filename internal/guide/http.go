// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package guide

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/logging"
)

// HTTPLookup fetches guide overrides from the Visit Busan guide
// endpoint. Callers treat any error as "no data"; the service keeps
// answering with defaults when the guide source is down.
type HTTPLookup struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPLookup creates a lookup from configuration.
func NewHTTPLookup(cfg config.VisitBusanConfig) *HTTPLookup {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLookup{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.WithComponent("guide"),
	}
}

// guidePayload is the wire shape of a guide response. Absent fields
// keep the defaults.
type guidePayload struct {
	Tourist *string `json:"tourist"`
	Citizen *string `json:"citizen"`
}

// Guide implements Lookup.
func (l *HTTPLookup) Guide(ctx context.Context, candidateID string) (Override, error) {
	reqURL := l.baseURL + "/guide?poi_id=" + url.QueryEscape(candidateID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Override{}, fmt.Errorf("failed to create guide request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Override{}, fmt.Errorf("guide request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Override{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Override{}, fmt.Errorf("guide API returned HTTP %d", resp.StatusCode)
	}

	var payload guidePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Override{}, fmt.Errorf("failed to decode guide response: %w", err)
	}
	return Override{Tourist: payload.Tourist, Citizen: payload.Citizen}, nil
}
