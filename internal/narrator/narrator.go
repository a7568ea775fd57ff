// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package narrator turns normalized multi-route results into a natural
// language explanation using the Gemini generative API. A narration has
// two parts: free text for display and an optional structured summary
// naming the selected routes and the tradeoffs of the alternatives.
package narrator

import (
	"context"

	"github.com/jihop-dev/gilro/internal/models"
)

// SelectedRoute names one recommended route and the reason it was
// picked.
type SelectedRoute struct {
	RouteID string `json:"route_id"`
	Reason  string `json:"reason"`
}

// AlternativeRoute names one non-selected route and its tradeoff.
type AlternativeRoute struct {
	RouteID  string `json:"route_id"`
	Tradeoff string `json:"tradeoff"`
}

// Summary is the structured portion of a narration.
type Summary struct {
	Selected     []SelectedRoute    `json:"selected"`
	Alternatives []AlternativeRoute `json:"alternatives"`
}

// Narration is the full output of a narrator.
type Narration struct {
	// Text is the raw model output.
	Text string `json:"text"`

	// Summary is the parsed structured summary, nil when the model
	// output carried no parseable JSON block.
	Summary *Summary `json:"summary,omitempty"`
}

// Narrator explains a normalized multi-route result. userContext is
// free text forwarded to the model (trip purpose, user type, language
// hints).
type Narrator interface {
	Narrate(ctx context.Context, result models.MultiRouteResult, userContext string) (Narration, error)
}
