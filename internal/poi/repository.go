// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package poi provides access to the point-of-interest store. Two
// implementations exist: a PostgreSQL repository for production and an
// in-memory repository for tests and database-less deployments.
package poi

import (
	"context"

	"github.com/jihop-dev/gilro/internal/models"
)

// Repository fetches POI candidates for the recommendation pipeline.
// An empty result is not an error; the pipeline treats it as "no
// recommendations".
type Repository interface {
	// FetchCandidates returns up to limit candidates starting at offset,
	// in a stable order.
	FetchCandidates(ctx context.Context, limit, offset int) ([]models.POICandidate, error)
}
