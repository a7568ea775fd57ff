// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package recommend

import (
	"errors"
	"math"
)

// ErrVectorLengthMismatch is returned by CosineSimilarity when the two
// vectors have different lengths. The pipeline treats a mismatch as a
// neutral similarity rather than a request failure.
var ErrVectorLengthMismatch = errors.New("embedding vectors have different lengths")

// CosineSimilarity computes the cosine similarity of two vectors:
//
//	dot(a, b) / (‖a‖ · ‖b‖)
//
// The result is clamped to [-1, 1] to absorb floating point drift. When
// either vector has zero norm (including empty vectors), the similarity
// is exactly 0.0; the function never divides by zero.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp(sim, -1, 1), nil
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
