// Package json encodes multiverse types to and from JSON.
//
// Batch files are either a bare array of requests or a versioned envelope
// {"version": 1, "requests": [...]}. Characters are written in a v1 envelope.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/multiverse"
)

const version = 1

// Request is the JSON form of a character request. Sampling fields left out
// fall back to the defaults passed to ToDomain. The binding tag is read by
// the gin transport when it binds a request body.
type Request struct {
	Universe          string   `json:"universe" binding:"required"`
	Details           []string `json:"details,omitempty"`
	MaxLength         *int     `json:"max_length,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
	Save              bool     `json:"save,omitempty"`
}

// ToDomain converts r into a CharacterRequest. Sampling is nil unless r
// overrides at least one parameter, in which case the unset ones come from
// defaults.
func (r Request) ToDomain(defaults multiverse.Sampling) multiverse.CharacterRequest {
	req := multiverse.CharacterRequest{
		Universe: r.Universe,
		Details:  r.Details,
		Save:     r.Save,
	}
	if r.MaxLength == nil && r.Temperature == nil && r.TopP == nil && r.RepetitionPenalty == nil {
		return req
	}
	s := defaults
	if r.MaxLength != nil {
		s.MaxLength = *r.MaxLength
	}
	if r.Temperature != nil {
		s.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		s.TopP = *r.TopP
	}
	if r.RepetitionPenalty != nil {
		s.RepetitionPenalty = *r.RepetitionPenalty
	}
	req.Sampling = &s
	return req
}

// batchEnvelope is the v1 wire format for a batch file.
type batchEnvelope struct {
	Version  int       `json:"version"`
	Requests []Request `json:"requests"`
}

// UnmarshalBatch decodes a batch file into requests, applying defaults to
// per-request sampling overrides.
func UnmarshalBatch(data []byte, defaults multiverse.Sampling) ([]multiverse.CharacterRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty batch: %w", multiverse.ErrValidation)
	}

	var dtos []Request
	if data[0] == '[' {
		if err := json.Unmarshal(data, &dtos); err != nil {
			return nil, fmt.Errorf("unmarshal batch: %w", err)
		}
	} else {
		var env batchEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshal batch envelope: %w", err)
		}
		if env.Version != 0 && env.Version != version {
			return nil, fmt.Errorf("unsupported batch version: %d", env.Version)
		}
		dtos = env.Requests
	}

	reqs := make([]multiverse.CharacterRequest, len(dtos))
	for i, dto := range dtos {
		if dto.Universe == "" {
			return nil, fmt.Errorf("request %d: missing universe: %w", i, multiverse.ErrValidation)
		}
		reqs[i] = dto.ToDomain(defaults)
	}
	return reqs, nil
}

// LoadBatch reads a batch file from path.
func LoadBatch(path string, defaults multiverse.Sampling) ([]multiverse.CharacterRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	reqs, err := UnmarshalBatch(data, defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// Sampling is the JSON form of multiverse.Sampling.
type Sampling struct {
	MaxLength         int     `json:"max_length"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// Usage is the JSON form of multiverse.Usage.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Character is the JSON form of a generated character.
type Character struct {
	Version    int       `json:"version"`
	ID         string    `json:"id"`
	Universe   string    `json:"universe"`
	Details    []string  `json:"details"`
	Text       string    `json:"text"`
	Path       string    `json:"path,omitempty"`
	Model      string    `json:"model,omitempty"`
	Sampling   Sampling  `json:"sampling"`
	StopReason string    `json:"stop_reason"`
	Usage      Usage     `json:"usage"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromCharacter converts c into its JSON form.
func FromCharacter(c multiverse.Character) Character {
	return Character{
		Version:  version,
		ID:       c.ID,
		Universe: c.Universe,
		Details:  c.Details,
		Text:     c.Text,
		Path:     c.Path,
		Model:    c.Model,
		Sampling: Sampling{
			MaxLength:         c.Sampling.MaxLength,
			Temperature:       c.Sampling.Temperature,
			TopP:              c.Sampling.TopP,
			RepetitionPenalty: c.Sampling.RepetitionPenalty,
		},
		StopReason: string(c.StopReason),
		Usage:      Usage{InputTokens: c.Usage.InputTokens, OutputTokens: c.Usage.OutputTokens},
		CreatedAt:  c.CreatedAt,
	}
}

// ToDomain converts the JSON form back into a Character. The prompt is not
// stored and is rebuilt from the universe template when the universe is
// still registered.
func (c Character) ToDomain() multiverse.Character {
	out := multiverse.Character{
		ID:       c.ID,
		Universe: c.Universe,
		Details:  c.Details,
		Text:     c.Text,
		Path:     c.Path,
		Model:    c.Model,
		Sampling: multiverse.Sampling{
			MaxLength:         c.Sampling.MaxLength,
			Temperature:       c.Sampling.Temperature,
			TopP:              c.Sampling.TopP,
			RepetitionPenalty: c.Sampling.RepetitionPenalty,
		},
		StopReason: multiverse.StopReason(c.StopReason),
		Usage:      multiverse.Usage{InputTokens: c.Usage.InputTokens, OutputTokens: c.Usage.OutputTokens},
		CreatedAt:  c.CreatedAt,
	}
	if u, err := multiverse.Validate(c.Universe, c.Details); err == nil {
		out.Prompt = multiverse.Assemble(u, c.Details)
	}
	return out
}

// MarshalCharacter serializes c in v1 envelope format.
func MarshalCharacter(c multiverse.Character) ([]byte, error) {
	return json.MarshalIndent(FromCharacter(c), "", "  ")
}

// UnmarshalCharacter deserializes a character in v1 envelope format.
func UnmarshalCharacter(data []byte) (multiverse.Character, error) {
	var dto Character
	if err := json.Unmarshal(data, &dto); err != nil {
		return multiverse.Character{}, fmt.Errorf("unmarshal character: %w", err)
	}
	if dto.Version != version {
		return multiverse.Character{}, fmt.Errorf("unsupported character version: %d", dto.Version)
	}
	return dto.ToDomain(), nil
}

// BatchItem is the JSON form of one batch outcome. Exactly one of Character
// and Error is set.
type BatchItem struct {
	Index     int        `json:"index"`
	Universe  string     `json:"universe"`
	Character *Character `json:"character,omitempty"`
	Error     *Error     `json:"error,omitempty"`
}

// Summary is the JSON form of multiverse.BatchSummary.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Batch is the JSON form of a finished batch.
type Batch struct {
	Version int         `json:"version"`
	Results []BatchItem `json:"results"`
	Summary Summary     `json:"summary"`
}

// FromBatch converts batch results into their JSON form.
func FromBatch(results []multiverse.BatchResult) Batch {
	b := Batch{Version: version, Results: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{Index: r.Index, Universe: r.Request.Universe}
		if r.Err != nil {
			e := FromError(r.Err)
			item.Error = &e
		} else {
			c := FromCharacter(r.Character)
			item.Character = &c
		}
		b.Results[i] = item
	}
	s := multiverse.Summarize(results)
	b.Summary = Summary{Total: s.Total, Succeeded: s.Succeeded, Failed: s.Failed}
	return b
}

// MarshalBatch serializes batch results with their summary.
func MarshalBatch(results []multiverse.BatchResult) ([]byte, error) {
	return json.MarshalIndent(FromBatch(results), "", "  ")
}

// Universe is the JSON form of a registered universe. Example is the
// template filled with the example values.
type Universe struct {
	ID       string   `json:"id"`
	Fields   []string `json:"fields"`
	Examples []string `json:"examples"`
	Example  string   `json:"example_prompt"`
}

// FromUniverse converts u into its JSON form.
func FromUniverse(u multiverse.Universe) Universe {
	return Universe{
		ID:       u.ID,
		Fields:   u.Fields,
		Examples: u.Examples,
		Example:  multiverse.Assemble(u, u.Examples),
	}
}

// Error codes returned in Error.Code.
const (
	CodeUnknownUniverse = "unknown_universe"
	CodeDetailCount     = "detail_count_mismatch"
	CodeValidation      = "validation"
	CodeGeneration      = "generation_failed"
	CodeCanceled        = "canceled"
	CodeInternal        = "internal"
)

// Error is the JSON form of a failed request. Valid is set for unknown
// universes; Expected, Actual and Fields for detail count mismatches; Cause
// for generation failures.
type Error struct {
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Valid    []string `json:"valid,omitempty"`
	Expected *int     `json:"expected,omitempty"`
	Actual   *int     `json:"actual,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	Cause    string   `json:"cause,omitempty"`
}

// FromError converts err into its JSON form, keeping the context carried by
// the multiverse error types.
func FromError(err error) Error {
	e := Error{Message: err.Error()}

	var unknown *multiverse.UnknownUniverseError
	var count *multiverse.DetailCountError
	var gen *multiverse.GenerationError
	switch {
	case errors.As(err, &unknown):
		e.Code = CodeUnknownUniverse
		e.Valid = unknown.Valid
	case errors.As(err, &count):
		e.Code = CodeDetailCount
		expected, actual := count.Expected, count.Actual
		e.Expected = &expected
		e.Actual = &actual
		e.Fields = count.Fields
	case errors.Is(err, multiverse.ErrValidation):
		e.Code = CodeValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeCanceled
	case errors.As(err, &gen):
		e.Code = CodeGeneration
		if gen.Err != nil {
			e.Cause = gen.Err.Error()
		}
	case errors.Is(err, multiverse.ErrGeneration):
		e.Code = CodeGeneration
	default:
		e.Code = CodeInternal
	}
	return e
}
