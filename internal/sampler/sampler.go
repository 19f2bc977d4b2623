// Package sampler turns a raw score vector into a single selected token,
// applying repetition penalty, temperature scaling, softmax and top-k /
// top-p filtering in a fixed pipeline order.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-logr/logr"

	"selekt/internal/domain"
)

// Sampler holds the emission history of one generation session. It is
// exclusively owned by that session: concurrent generations must each hold
// their own instance.
type Sampler struct {
	policy  Policy
	emitted []int
	counts  map[int]int
	randFn  func() float64
	log     logr.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithRand injects the uniform [0,1) random source used for stochastic
// selection. Tests pass a fixed-sequence stub to make draws reproducible.
func WithRand(fn func() float64) Option {
	return func(s *Sampler) { s.randFn = fn }
}

// WithLogger attaches a logger. Sampling is silent by default.
func WithLogger(log logr.Logger) Option {
	return func(s *Sampler) { s.log = log }
}

// WithPolicy sets the policy used by Sample. Defaults to DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(s *Sampler) { s.policy = p }
}

// New creates a sampler with empty history.
func New(opts ...Option) *Sampler {
	s := &Sampler{
		policy: DefaultPolicy(),
		counts: make(map[int]int),
		randFn: rand.Float64,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample selects the next token from raw scores using the configured
// policy. History is updated only after a successful selection; a failed
// call leaves the sampler exactly as it was.
func (s *Sampler) Sample(scores []float64) (int, error) {
	return s.SampleWith(scores, s.policy)
}

// SampleWith is Sample with an explicit per-call policy.
func (s *Sampler) SampleWith(scores []float64, policy Policy) (int, error) {
	token, err := s.run(scores, policy)
	if err != nil {
		return 0, err
	}
	s.emitted = append(s.emitted, token)
	s.counts[token]++
	s.log.V(1).Info("sampled token", "token", token, "history", len(s.emitted))
	return token, nil
}

// Distribution reports the probability vector the selection stage would
// draw from, without selecting or touching history. In deterministic mode
// (temperature 0) it is a one-hot vector at the argmax.
func (s *Sampler) Distribution(scores []float64, policy Policy) ([]float64, error) {
	if len(scores) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	adjusted := s.penalized(scores, policy.RepetitionPenalty)
	if policy.Temperature == 0 {
		probs := make([]float64, len(adjusted))
		probs[argmax(adjusted)] = 1
		return probs, nil
	}
	return s.filtered(adjusted, policy)
}

// Reset clears the emission history, independent of policy.
func (s *Sampler) Reset() {
	s.emitted = nil
	s.counts = make(map[int]int)
}

// Emitted returns a copy of the emission sequence so far, in order.
func (s *Sampler) Emitted() []int {
	out := make([]int, len(s.emitted))
	copy(out, s.emitted)
	return out
}

func (s *Sampler) run(scores []float64, policy Policy) (int, error) {
	if len(scores) == 0 {
		return 0, domain.ErrEmptyInput
	}
	if err := policy.Validate(); err != nil {
		return 0, fmt.Errorf("invalid policy: %w", err)
	}

	adjusted := s.penalized(scores, policy.RepetitionPenalty)

	// Deterministic mode selects straight from the penalized scores and
	// skips normalization and filtering entirely.
	if policy.Temperature == 0 {
		return argmax(adjusted), nil
	}

	probs, err := s.filtered(adjusted, policy)
	if err != nil {
		return 0, err
	}
	return drawIndex(probs, s.randFn())
}

// filtered runs temperature scaling, softmax and both filtering stages.
func (s *Sampler) filtered(adjusted []float64, policy Policy) ([]float64, error) {
	for i := range adjusted {
		adjusted[i] /= policy.Temperature
	}
	probs := Softmax(adjusted)
	if policy.TopK > 0 && policy.TopK < len(probs) {
		var err error
		probs, err = TopKFilter(probs, policy.TopK)
		if err != nil {
			return nil, fmt.Errorf("top-k stage: %w", err)
		}
	}
	if policy.TopP < 1 {
		var err error
		probs, err = TopPFilter(probs, policy.TopP)
		if err != nil {
			return nil, fmt.Errorf("top-p stage: %w", err)
		}
	}
	return probs, nil
}

// penalized copies scores and applies the repetition penalty: each
// previously emitted index is divided (positive score) or multiplied
// (non-positive score) by penalty^count, pushing repeats toward exclusion.
func (s *Sampler) penalized(scores []float64, penalty float64) []float64 {
	adjusted := make([]float64, len(scores))
	copy(adjusted, scores)
	if penalty == 1.0 {
		return adjusted
	}
	for token, count := range s.counts {
		if token < 0 || token >= len(adjusted) {
			continue
		}
		factor := math.Pow(penalty, float64(count))
		if adjusted[token] > 0 {
			adjusted[token] /= factor
		} else {
			adjusted[token] *= factor
		}
	}
	return adjusted
}

// drawIndex performs inverse-CDF sampling: the first index whose cumulative
// probability meets the draw wins. If rounding leaves the draw above the
// total mass, the highest nonzero-probability index is returned.
func drawIndex(probs []float64, draw float64) (int, error) {
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if p > 0 && cumulative >= draw {
			return i, nil
		}
	}
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i, nil
		}
	}
	return 0, domain.ErrDegenerateDistribution
}
