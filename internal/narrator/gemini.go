// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package narrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/logging"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/models"
)

// GeminiNarrator calls the Gemini generateContent REST endpoint.
// Safe for concurrent use.
type GeminiNarrator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  zerolog.Logger
}

// NewGeminiNarrator creates a narrator from configuration.
func NewGeminiNarrator(cfg config.GeminiConfig) *GeminiNarrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &GeminiNarrator{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.WithComponent("narrator"),
	}
}

// generateContent request/response wire types, reduced to the fields
// this client reads and writes.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Narrate implements Narrator.
func (g *GeminiNarrator) Narrate(ctx context.Context, result models.MultiRouteResult, userContext string) (Narration, error) {
	start := time.Now()
	narration, err := g.narrate(ctx, result, userContext)
	metrics.NarrationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NarrationRequests.WithLabelValues("failure").Inc()
		return Narration{}, err
	}
	metrics.NarrationRequests.WithLabelValues("success").Inc()
	return narration, nil
}

func (g *GeminiNarrator) narrate(ctx context.Context, result models.MultiRouteResult, userContext string) (Narration, error) {
	prompt, err := buildPrompt(result, userContext)
	if err != nil {
		return Narration{}, err
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return Narration{}, fmt.Errorf("failed to encode narration request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return Narration{}, fmt.Errorf("failed to create narration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Narration{}, fmt.Errorf("narration request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Narration{}, fmt.Errorf("narration API returned HTTP %d: %s", resp.StatusCode, errBody)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Narration{}, fmt.Errorf("failed to decode narration response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Narration{}, fmt.Errorf("narration response has no candidates")
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	narration := Narration{Text: text}
	if summary := parseSummary(text); summary != nil {
		narration.Summary = summary
	} else {
		g.logger.Debug().Msg("narration output carried no parseable summary")
	}
	return narration, nil
}

// buildPrompt renders the narration prompt with the normalized routes
// embedded as JSON.
func buildPrompt(result models.MultiRouteResult, userContext string) (string, error) {
	routesJSON, err := json.Marshal(result.Routes)
	if err != nil {
		return "", fmt.Errorf("failed to encode routes for prompt: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a navigation assistant for travel routes in Busan, South Korea.\n")
	b.WriteString("Below are normalized route alternatives from the ")
	b.WriteString(result.Provider)
	b.WriteString(" provider. Distances are meters, durations seconds, tolls KRW.\n\n")
	b.WriteString("Routes:\n")
	b.Write(routesJSON)
	b.WriteString("\n\n")
	if userContext != "" {
		b.WriteString("Traveler context: ")
		b.WriteString(userContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Requirements:\n")
	b.WriteString("- Prioritize the lowest total duration.\n")
	b.WriteString("- Keep tolls and fares as low as possible.\n")
	b.WriteString("- Reflect the traveler's tourist or citizen preference from the context.\n")
	b.WriteString("- Explain which route you recommend and why, in Korean prose.\n\n")
	b.WriteString("Then output a JSON object with exactly this shape:\n")
	b.WriteString(`{"selected":[{"route_id":"...","reason":"..."}],"alternatives":[{"route_id":"...","tradeoff":"..."}]}`)
	b.WriteString("\n")
	return b.String(), nil
}

// parseSummary extracts and decodes the structured JSON block from
// model output. Returns nil when no valid block is found.
func parseSummary(text string) *Summary {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}

	var summary Summary
	if err := json.Unmarshal([]byte(text[start:end+1]), &summary); err != nil {
		return nil
	}
	if len(summary.Selected) == 0 && len(summary.Alternatives) == 0 {
		return nil
	}
	return &summary
}
