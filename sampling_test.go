package multiverse_test

import (
	"math"
	"testing"

	"github.com/fwojciec/multiverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSampling(t *testing.T) {
	t.Parallel()
	s := multiverse.DefaultSampling()
	assert.Equal(t, 350, s.MaxLength)
	assert.Equal(t, 0.85, s.Temperature)
	assert.Equal(t, 0.92, s.TopP)
	assert.Equal(t, 1.2, s.RepetitionPenalty)
	assert.NoError(t, s.Validate())
}

func TestSampling_Validate_Bounds(t *testing.T) {
	t.Parallel()

	valid := []struct {
		name string
		edit func(*multiverse.Sampling)
	}{
		{"min length", func(s *multiverse.Sampling) { s.MaxLength = 50 }},
		{"max length", func(s *multiverse.Sampling) { s.MaxLength = 1000 }},
		{"zero temperature", func(s *multiverse.Sampling) { s.Temperature = 0 }},
		{"unit temperature", func(s *multiverse.Sampling) { s.Temperature = 1 }},
		{"zero top_p", func(s *multiverse.Sampling) { s.TopP = 0 }},
		{"unit top_p", func(s *multiverse.Sampling) { s.TopP = 1 }},
		{"min penalty", func(s *multiverse.Sampling) { s.RepetitionPenalty = 1 }},
		{"max penalty", func(s *multiverse.Sampling) { s.RepetitionPenalty = 2 }},
	}
	for _, tc := range valid {
		t.Run(tc.name+" is valid", func(t *testing.T) {
			t.Parallel()
			s := multiverse.DefaultSampling()
			tc.edit(&s)
			assert.NoError(t, s.Validate())
		})
	}

	invalid := []struct {
		name  string
		field string
		edit  func(*multiverse.Sampling)
	}{
		{"short length", "max_length", func(s *multiverse.Sampling) { s.MaxLength = 49 }},
		{"long length", "max_length", func(s *multiverse.Sampling) { s.MaxLength = 1001 }},
		{"negative temperature", "temperature", func(s *multiverse.Sampling) { s.Temperature = -0.1 }},
		{"hot temperature", "temperature", func(s *multiverse.Sampling) { s.Temperature = 1.1 }},
		{"NaN temperature", "temperature", func(s *multiverse.Sampling) { s.Temperature = math.NaN() }},
		{"negative top_p", "top_p", func(s *multiverse.Sampling) { s.TopP = -0.01 }},
		{"large top_p", "top_p", func(s *multiverse.Sampling) { s.TopP = 1.5 }},
		{"low penalty", "repetition_penalty", func(s *multiverse.Sampling) { s.RepetitionPenalty = 0.9 }},
		{"high penalty", "repetition_penalty", func(s *multiverse.Sampling) { s.RepetitionPenalty = 2.5 }},
	}
	for _, tc := range invalid {
		t.Run(tc.name+" is invalid", func(t *testing.T) {
			t.Parallel()
			s := multiverse.DefaultSampling()
			tc.edit(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, multiverse.ErrValidation)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		r := multiverse.Request{Prompt: "Create a character", Sampling: multiverse.DefaultSampling()}
		assert.NoError(t, r.Validate())
	})

	t.Run("empty prompt", func(t *testing.T) {
		t.Parallel()
		r := multiverse.Request{Sampling: multiverse.DefaultSampling()}
		err := r.Validate()
		assert.ErrorIs(t, err, multiverse.ErrValidation)
		assert.Contains(t, err.Error(), "prompt")
	})

	t.Run("zero sampling", func(t *testing.T) {
		t.Parallel()
		r := multiverse.Request{Prompt: "Create a character"}
		assert.ErrorIs(t, r.Validate(), multiverse.ErrValidation)
	})
}
