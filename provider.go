package multiverse

import (
	"context"
	"fmt"
)

// Provider is a strategy pattern interface for text-generation backends.
// Implementations forward Request.Sampling to their API as faithfully as the
// API allows and never retry on their own.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries the assembled prompt and the sampling parameters.
type Request struct {
	Model    string // model ID, provider-specific; empty = provider default
	Prompt   string
	Sampling Sampling
}

// Validate checks universal constraints on Request.
func (r Request) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt is empty: %w", ErrValidation)
	}
	return r.Sampling.Validate()
}
