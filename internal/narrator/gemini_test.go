// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package narrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/jihop-dev/gilro/internal/config"
	"github.com/jihop-dev/gilro/internal/models"
)

func geminiReply(text string) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func testResult() models.MultiRouteResult {
	return models.MultiRouteResult{
		Routes: []models.Route{
			{ID: "r1", Summary: models.LegCost{Distance: 1000, Duration: 600, Toll: 500}},
			{ID: "r2", Summary: models.LegCost{Distance: 1400, Duration: 480, Toll: 0}},
		},
		Provider: "kakao-navi",
	}
}

func newTestNarrator(serverURL string) *GeminiNarrator {
	return NewGeminiNarrator(config.GeminiConfig{
		Enabled: true,
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "gemini-1.5-pro",
		Timeout: 5 * time.Second,
	})
}

func TestNarrateParsesSummary(t *testing.T) {
	reply := "I recommend the fastest route.\n\n" +
		"```json\n" +
		`{"selected":[{"route_id":"r2","reason":"fastest"}],"alternatives":[{"route_id":"r1","tradeoff":"cheaper but slower"}]}` +
		"\n```"

	var gotPath string
	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key query param, got %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(reply)))
	}))
	defer server.Close()

	narrator := newTestNarrator(server.URL)
	narration, err := narrator.Narrate(context.Background(), testResult(), "family trip with kids")
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}

	if gotPath != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, `"r1"`) || !strings.Contains(prompt, `"r2"`) {
		t.Error("prompt should embed the normalized routes")
	}
	if !strings.Contains(prompt, "family trip with kids") {
		t.Error("prompt should carry the traveler context")
	}
	for _, requirement := range []string{
		"lowest total duration",
		"as low as possible",
		"tourist or citizen preference",
		"Korean prose",
	} {
		if !strings.Contains(prompt, requirement) {
			t.Errorf("prompt missing requirement line %q", requirement)
		}
	}

	if narration.Text != reply {
		t.Errorf("Text = %q, want full model output", narration.Text)
	}
	if narration.Summary == nil {
		t.Fatal("expected a parsed summary")
	}
	if len(narration.Summary.Selected) != 1 || narration.Summary.Selected[0].RouteID != "r2" {
		t.Errorf("Selected = %+v, want r2", narration.Summary.Selected)
	}
	if len(narration.Summary.Alternatives) != 1 || narration.Summary.Alternatives[0].RouteID != "r1" {
		t.Errorf("Alternatives = %+v, want r1", narration.Summary.Alternatives)
	}
}

func TestNarrateWithoutSummaryBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply("Take the coastal road, it is lovely this time of year.")))
	}))
	defer server.Close()

	narration, err := newTestNarrator(server.URL).Narrate(context.Background(), testResult(), "")
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if narration.Summary != nil {
		t.Errorf("Summary = %+v, want nil for prose-only output", narration.Summary)
	}
	if narration.Text == "" {
		t.Error("expected the prose text to be preserved")
	}
}

func TestNarrateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if _, err := newTestNarrator(server.URL).Narrate(context.Background(), testResult(), ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare json", `{"selected":[{"route_id":"r1","reason":"ok"}],"alternatives":[]}`, true},
		{"fenced json", "```json\n{\"selected\":[{\"route_id\":\"r1\",\"reason\":\"ok\"}]}\n```", true},
		{"prose only", "take route one", false},
		{"empty object", "{}", false},
		{"invalid json", "{selected:}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSummary(tt.text)
			if (got != nil) != tt.want {
				t.Errorf("parseSummary(%q) = %+v, want present=%v", tt.text, got, tt.want)
			}
		})
	}
}
