// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package recommend

import (
	"github.com/jihop-dev/gilro/internal/models"
)

// PreferenceTourist is the only preference class with its own weight.
// Every other string, including unknown values, is treated as the
// citizen class; preference handling is total over strings.
const (
	PreferenceTourist = "tourist"
	PreferenceCitizen = "citizen"
)

// Config holds the scoring parameters of the engine.
type Config struct {
	// TouristWeight scales similarity for the "tourist" preference.
	TouristWeight float64

	// CitizenWeight scales similarity for every other preference value.
	CitizenWeight float64

	// Concurrency bounds parallel leg resolution across candidates.
	Concurrency int
}

// DefaultConfig returns the standard scoring configuration.
func DefaultConfig() Config {
	return Config{
		TouristWeight: 1.0,
		CitizenWeight: 1.2,
		Concurrency:   4,
	}
}

// weightFor returns the preference weight for a user type.
func (c Config) weightFor(preference string) float64 {
	if preference == PreferenceTourist {
		return c.TouristWeight
	}
	return c.CitizenWeight
}

// scoreCandidate assembles a RankedRecommendation for one surviving
// candidate. The composite score is similarity scaled by the preference
// weight; leg costs are summed into total distance and duration. Tolls
// are carried on the legs but not folded into the score. Order is
// assigned later by Rank.
func scoreCandidate(
	candidate models.POICandidate,
	similarity float64,
	legTo, legFrom models.LegCost,
	weight float64,
	guideText models.GuideText,
) models.RankedRecommendation {
	total := legTo.Add(legFrom)
	return models.RankedRecommendation{
		ID:          candidate.ID,
		Address:     candidate.Address,
		Location:    candidate.Location,
		Description: candidate.Description,
		Similarity:  similarity,
		Distance:    total.Distance,
		Duration:    total.Duration,
		Score:       similarity * weight,
		Guide:       guideText,
	}
}
