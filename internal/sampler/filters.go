package sampler

import (
	"math"
	"sort"

	"selekt/internal/domain"
)

// Softmax converts a score vector into a probability vector. The maximum
// score is subtracted before exponentiating; that is a numerical-stability
// requirement, not an optimization.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	exps := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		exps[i] = math.Exp(s - maxScore)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// TopKFilter zeroes every probability outside the k highest and
// renormalizes the remainder to sum to 1. Ties keep ascending-index order,
// so the retained set is deterministic. If the retained mass is zero the
// all-zero vector is returned alongside ErrDegenerateDistribution.
func TopKFilter(probs []float64, k int) ([]float64, error) {
	if k <= 0 || k >= len(probs) {
		out := make([]float64, len(probs))
		copy(out, probs)
		return out, nil
	}
	idxs := sortedIndexesDesc(probs)
	filtered := make([]float64, len(probs))
	sum := 0.0
	for _, i := range idxs[:k] {
		filtered[i] = probs[i]
		sum += probs[i]
	}
	if sum == 0 {
		return filtered, domain.ErrDegenerateDistribution
	}
	for i := range filtered {
		filtered[i] /= sum
	}
	return filtered, nil
}

// TopPFilter keeps the smallest descending-probability prefix whose
// cumulative mass reaches p, inclusive of the crossing element, zeroes the
// rest and renormalizes. p >= 1 is a no-op.
func TopPFilter(probs []float64, p float64) ([]float64, error) {
	out := make([]float64, len(probs))
	if p >= 1 {
		copy(out, probs)
		return out, nil
	}
	idxs := sortedIndexesDesc(probs)
	cumulative := 0.0
	cutoff := len(idxs)
	for i, idx := range idxs {
		cumulative += probs[idx]
		if cumulative >= p {
			cutoff = i + 1
			break
		}
	}
	sum := 0.0
	for _, idx := range idxs[:cutoff] {
		out[idx] = probs[idx]
		sum += probs[idx]
	}
	if sum == 0 {
		return out, domain.ErrDegenerateDistribution
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// sortedIndexesDesc returns candidate indexes ordered by descending value.
// The stable sort over ascending indexes makes tie order deterministic.
func sortedIndexesDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return vals[idxs[a]] > vals[idxs[b]]
	})
	return idxs
}

// argmax returns the index of the maximum value, first occurrence winning.
func argmax(vals []float64) int {
	best := 0
	for i, v := range vals[1:] {
		if v > vals[best] {
			best = i + 1
		}
	}
	return best
}
