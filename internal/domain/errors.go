package domain

import "errors"

var (
	// ErrEmptyInput is returned when a zero-length vector is supplied.
	ErrEmptyInput = errors.New("empty score vector")

	// ErrDimensionMismatch is returned when two vectors disagree in length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrDegenerateDistribution is returned when a filtering stage zeroes
	// all probability mass, leaving nothing to renormalize or sample.
	ErrDegenerateDistribution = errors.New("all probability mass filtered out")
)
