// Package similarity implements the scalar scoring primitives shared by the
// retriever and any collaborator that produces L2-normalized vectors.
package similarity

import (
	"math"

	"selekt/internal/domain"
)

// Cosine computes the cosine similarity dot(a,b) / (‖a‖·‖b‖) between two
// vectors of equal length. Either vector having zero magnitude yields 0;
// that is a deliberate policy, not an error.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return Dot(a, b) / (na * nb), nil
}

// Dot computes the dot product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm computes the L2 norm of a vector.
func Norm(a []float64) float64 {
	sum := 0.0
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}
