// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package recommend

import (
	"sort"

	"github.com/jihop-dev/gilro/internal/models"
)

// Rank sorts recommendations by composite score descending and assigns
// 1-based order positions. The sort is stable: candidates with equal
// scores keep their relative input order, which makes the output
// deterministic. Score is the sole ordering key; no secondary key is
// applied on ties. The input slice is sorted in place and returned.
func Rank(recs []models.RankedRecommendation) []models.RankedRecommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	for i := range recs {
		recs[i].Order = i + 1
	}
	return recs
}
