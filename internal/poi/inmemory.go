// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package poi

import (
	"context"
	"sync"

	"github.com/jihop-dev/gilro/internal/models"
)

// InMemoryRepository holds candidates in memory. Safe for concurrent
// use. Used by tests and by deployments without a database.
type InMemoryRepository struct {
	mu         sync.RWMutex
	candidates []models.POICandidate
}

// NewInMemoryRepository creates a repository seeded with the given
// candidates. The slice is copied.
func NewInMemoryRepository(candidates []models.POICandidate) *InMemoryRepository {
	copied := make([]models.POICandidate, len(candidates))
	copy(copied, candidates)
	return &InMemoryRepository{candidates: copied}
}

// FetchCandidates implements Repository with slice-window pagination.
func (r *InMemoryRepository) FetchCandidates(_ context.Context, limit, offset int) ([]models.POICandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.candidates) {
		return []models.POICandidate{}, nil
	}

	end := len(r.candidates)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]models.POICandidate, end-offset)
	copy(out, r.candidates[offset:end])
	return out, nil
}

// Add appends a candidate to the store.
func (r *InMemoryRepository) Add(c models.POICandidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append(r.candidates, c)
}

// Len reports the number of stored candidates.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.candidates)
}
