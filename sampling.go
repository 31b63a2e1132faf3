package multiverse

import "fmt"

// Sampling bounds.
const (
	MinMaxLength         = 50
	MaxMaxLength         = 1000
	MinRepetitionPenalty = 1.0
	MaxRepetitionPenalty = 2.0
)

// Sampling carries the generation controls forwarded to a Provider.
type Sampling struct {
	MaxLength         int     // upper bound on generated length, in tokens
	Temperature       float64 // [0, 1]
	TopP              float64 // nucleus probability, [0, 1]
	RepetitionPenalty float64 // [1, 2]
}

// DefaultSampling returns the sampling parameters used when a caller does not
// override them.
func DefaultSampling() Sampling {
	return Sampling{
		MaxLength:         350,
		Temperature:       0.85,
		TopP:              0.92,
		RepetitionPenalty: 1.2,
	}
}

// Validate checks every parameter against its bounds.
func (s Sampling) Validate() error {
	if s.MaxLength < MinMaxLength || s.MaxLength > MaxMaxLength {
		return fmt.Errorf("max_length must be in [%d, %d], got %d: %w", MinMaxLength, MaxMaxLength, s.MaxLength, ErrValidation)
	}
	if !(s.Temperature >= 0 && s.Temperature <= 1) { // also rejects NaN
		return fmt.Errorf("temperature must be in [0, 1], got %g: %w", s.Temperature, ErrValidation)
	}
	if !(s.TopP >= 0 && s.TopP <= 1) {
		return fmt.Errorf("top_p must be in [0, 1], got %g: %w", s.TopP, ErrValidation)
	}
	if !(s.RepetitionPenalty >= MinRepetitionPenalty && s.RepetitionPenalty <= MaxRepetitionPenalty) {
		return fmt.Errorf("repetition_penalty must be in [%g, %g], got %g: %w", MinRepetitionPenalty, MaxRepetitionPenalty, s.RepetitionPenalty, ErrValidation)
	}
	return nil
}
