// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package recommend implements the route recommendation scoring engine:
// per-candidate two-leg travel cost resolution, cosine similarity
// scoring, preference-weighted composite scores, and deterministic
// ranking.
//
// The pipeline is a bounded fan-out, fan-in computation. Each
// candidate's leg resolution is independent; the only synchronization
// point is the final gather before ranking. A candidate whose leg
// resolution fails is dropped from the output rather than retried or
// defaulted.
package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jihop-dev/gilro/internal/guide"
	"github.com/jihop-dev/gilro/internal/logging"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/models"
)

// LegResolver obtains the travel cost of one directed leg between two
// points. Implementations return an error for any client-level failure
// (network error, non-success status, malformed response); the engine
// responds by excluding the affected candidate, never by retrying.
type LegResolver interface {
	ResolveLeg(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error)
}

// Engine orchestrates the recommendation pipeline. It is stateless
// across requests and safe for concurrent use.
type Engine struct {
	legs   LegResolver
	guides guide.Lookup
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine. guides may be nil, in
// which case every recommendation carries the default guide text.
func NewEngine(legs LegResolver, guides guide.Lookup, cfg Config) *Engine {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.TouristWeight == 0 {
		cfg.TouristWeight = DefaultConfig().TouristWeight
	}
	if cfg.CitizenWeight == 0 {
		cfg.CitizenWeight = DefaultConfig().CitizenWeight
	}
	return &Engine{
		legs:   legs,
		guides: guides,
		cfg:    cfg,
		logger: logging.WithComponent("recommend"),
	}
}

// Recommend scores and ranks the given candidates for a journey from
// origin to destination.
//
// For each candidate both legs (origin→POI, POI→destination) are
// resolved concurrently across candidates, bounded by the configured
// concurrency limit. A candidate with either leg missing is excluded
// from the output. Similarity compares the candidate embedding against
// queryEmbedding when one is supplied, and against itself otherwise
// (self-comparison yields 1.0 for any non-zero vector). A vector length
// mismatch degrades that candidate's similarity to 0 rather than
// failing the request.
//
// An empty result is a valid, non-exceptional outcome. The only error
// returned is the context's, when the caller cancels mid-flight.
func (e *Engine) Recommend(
	ctx context.Context,
	candidates []models.POICandidate,
	origin, destination models.GeoPoint,
	preference string,
	queryEmbedding []float64,
) ([]models.RankedRecommendation, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	weight := e.cfg.weightFor(preference)

	// results holds one slot per candidate; nil slots are drops. Keeping
	// candidate input order here preserves stable tie-breaking in Rank.
	results := make([]*models.RankedRecommendation, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			rec, ok := e.scoreOne(gctx, candidate, origin, destination, weight, queryEmbedding)
			if ok {
				results[i] = &rec
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]models.RankedRecommendation, 0, len(candidates))
	for _, rec := range results {
		if rec != nil {
			survivors = append(survivors, *rec)
		}
	}

	metrics.RecommendCandidatesScored.Add(float64(len(survivors)))
	e.logger.Debug().
		Int("candidates", len(candidates)).
		Int("ranked", len(survivors)).
		Str("preference", preference).
		Msg("recommendation pipeline complete")

	return Rank(survivors), nil
}

// scoreOne resolves both legs and builds the recommendation for one
// candidate. Returns ok=false when the candidate is dropped.
func (e *Engine) scoreOne(
	ctx context.Context,
	candidate models.POICandidate,
	origin, destination models.GeoPoint,
	weight float64,
	queryEmbedding []float64,
) (models.RankedRecommendation, bool) {
	legTo, err := e.legs.ResolveLeg(ctx, origin, candidate.Location)
	if err != nil {
		e.dropCandidate(candidate.ID, "to_poi", err)
		return models.RankedRecommendation{}, false
	}

	legFrom, err := e.legs.ResolveLeg(ctx, candidate.Location, destination)
	if err != nil {
		e.dropCandidate(candidate.ID, "from_poi", err)
		return models.RankedRecommendation{}, false
	}

	similarity := e.similarityFor(candidate, queryEmbedding)
	guideText := e.guideFor(ctx, candidate.ID)

	return scoreCandidate(candidate, similarity, legTo, legFrom, weight, guideText), true
}

// similarityFor computes the similarity signal for a candidate. With no
// query embedding the candidate is compared against itself.
func (e *Engine) similarityFor(candidate models.POICandidate, queryEmbedding []float64) float64 {
	other := queryEmbedding
	if other == nil {
		other = candidate.Embedding
	}

	sim, err := CosineSimilarity(candidate.Embedding, other)
	if err != nil {
		e.logger.Warn().
			Str("poi", candidate.ID).
			Int("candidate_len", len(candidate.Embedding)).
			Int("query_len", len(other)).
			Msg("embedding length mismatch, using neutral similarity")
		return 0
	}
	return sim
}

// guideFor resolves guide text, falling back to defaults on any lookup
// failure.
func (e *Engine) guideFor(ctx context.Context, candidateID string) models.GuideText {
	if e.guides == nil {
		return guide.Defaults()
	}
	override, err := e.guides.Guide(ctx, candidateID)
	if err != nil {
		e.logger.Warn().Err(err).Str("poi", candidateID).Msg("guide lookup failed, using defaults")
		return guide.Defaults()
	}
	return guide.Resolve(override)
}

// dropCandidate logs and counts one excluded candidate.
func (e *Engine) dropCandidate(candidateID, leg string, err error) {
	metrics.NaviCandidatesDropped.Inc()
	e.logger.Warn().
		Err(err).
		Str("poi", candidateID).
		Str("leg", leg).
		Msg("leg resolution failed, dropping candidate")
}
