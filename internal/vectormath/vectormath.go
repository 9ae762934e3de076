// Package vectormath provides cosine similarity and best-match selection
// over embedding vectors.
//
// All similarity computations treat empty vectors, mismatched dimensions,
// and zero-magnitude vectors as zero similarity rather than errors. This
// lets a failed embedding (empty vector sentinel) flow through matching
// without special-casing at every call site.
package vectormath

import "math"

// CosineSimilarity computes cosine similarity between two vectors.
//
// Formula: cos(θ) = (A · B) / (||A|| * ||B||)
// Returns a value in [-1, 1] where 1 = identical, 0 = orthogonal, -1 = opposite.
// Returns 0 if either vector is empty, the dimensions differ, or either
// magnitude is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

// BestMatch returns the index of the candidate most similar to target,
// along with its score. A candidate qualifies when its score is at or above
// threshold; among qualifying candidates the strictly greatest score wins,
// so ties resolve to the first-encountered candidate. Returns -1 when no
// candidate qualifies.
func BestMatch(candidates [][]float32, target []float32, threshold float64) (int, float64) {
	bestIndex := -1
	bestScore := 0.0

	for i, c := range candidates {
		score := CosineSimilarity(target, c)
		if score >= threshold && score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	return bestIndex, bestScore
}
