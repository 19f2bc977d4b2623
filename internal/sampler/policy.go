package sampler

import "errors"

// Policy configures one selection call. Temperature 0 selects
// deterministic argmax mode; TopK 0 and TopP 1.0 disable their stages.
type Policy struct {
	// Temperature scales scores before softmax. 0 means deterministic
	// argmax over the penalized scores.
	Temperature float64 `yaml:"temperature"`
	// TopK keeps only the k highest-probability candidates. 0 disables.
	TopK int `yaml:"top_k"`
	// TopP keeps the smallest high-probability prefix whose cumulative
	// mass reaches p. 1.0 disables.
	TopP float64 `yaml:"top_p"`
	// RepetitionPenalty pushes previously emitted candidates toward
	// exclusion, compounding with emission count. 1.0 is neutral.
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
}

// DefaultPolicy returns the generation defaults of the source system.
func DefaultPolicy() Policy {
	return Policy{
		Temperature:       0.7,
		TopK:              40,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
	}
}

// Validate checks the policy against its documented ranges.
func (p Policy) Validate() error {
	if p.Temperature < 0 {
		return errors.New("temperature must be non-negative")
	}
	if p.TopK < 0 {
		return errors.New("top_k must be non-negative")
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return errors.New("top_p must be in (0, 1]")
	}
	if p.RepetitionPenalty < 0 {
		return errors.New("repetition_penalty must be non-negative")
	}
	return nil
}
