// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package guide supplies per-POI guide text for tourists and citizens.
// Guide data is optional: when a lookup has nothing for a POI, or a
// lookup call fails, fixed default strings are used. Partial overrides
// are allowed; a lookup may supply only one of the two audiences.
package guide

import (
	"context"
	"sync"

	"github.com/jihop-dev/gilro/internal/models"
)

// Default guide strings used when no external guide data is available.
const (
	DefaultTourist = "기본 관광객 안내 정보"
	DefaultCitizen = "기본 시민 안내 정보"
)

// Override carries optional per-audience guide text. A nil field means
// "keep the default".
type Override struct {
	Tourist *string
	Citizen *string
}

// Lookup resolves guide overrides for a POI. Implementations return
// (Override{}, nil) when they have no data for the id; an error is
// treated by callers as "no data" (defaults apply).
type Lookup interface {
	Guide(ctx context.Context, candidateID string) (Override, error)
}

// Resolve merges an override with the defaults. Each field is overridden
// independently.
func Resolve(o Override) models.GuideText {
	text := models.GuideText{
		Tourist: DefaultTourist,
		Citizen: DefaultCitizen,
	}
	if o.Tourist != nil {
		text.Tourist = *o.Tourist
	}
	if o.Citizen != nil {
		text.Citizen = *o.Citizen
	}
	return text
}

// Defaults returns the default guide text pair.
func Defaults() models.GuideText {
	return Resolve(Override{})
}

// Static is an in-memory Lookup backed by a fixed map. Safe for
// concurrent use. Useful for tests and for deployments without a guide
// data source.
type Static struct {
	mu      sync.RWMutex
	entries map[string]Override
}

// NewStatic creates a Static lookup from the given entries. A nil map
// yields an empty lookup.
func NewStatic(entries map[string]Override) *Static {
	if entries == nil {
		entries = make(map[string]Override)
	}
	return &Static{entries: entries}
}

// Guide implements Lookup.
func (s *Static) Guide(_ context.Context, candidateID string) (Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[candidateID], nil
}

// Set adds or replaces the override for a POI.
func (s *Static) Set(candidateID string, o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[candidateID] = o
}
