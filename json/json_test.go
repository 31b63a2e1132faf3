package json_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/multiverse"
	mvjson "github.com/fwojciec/multiverse/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalBatch_Array(t *testing.T) {
	t.Parallel()
	data := []byte(`[
		{"universe": "fantasy", "details": ["Elf", "Mage", "Neutral Good", "Rivendell"]},
		{"universe": "horror", "save": true}
	]`)

	reqs, err := mvjson.UnmarshalBatch(data, multiverse.DefaultSampling())

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "fantasy", reqs[0].Universe)
	assert.Equal(t, []string{"Elf", "Mage", "Neutral Good", "Rivendell"}, reqs[0].Details)
	assert.Nil(t, reqs[0].Sampling)
	assert.False(t, reqs[0].Save)
	assert.Equal(t, "horror", reqs[1].Universe)
	assert.Empty(t, reqs[1].Details)
	assert.True(t, reqs[1].Save)
}

func TestUnmarshalBatch_Envelope(t *testing.T) {
	t.Parallel()
	data := []byte(`{"version": 1, "requests": [{"universe": "anime"}]}`)

	reqs, err := mvjson.UnmarshalBatch(data, multiverse.DefaultSampling())

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "anime", reqs[0].Universe)
}

func TestUnmarshalBatch_EnvelopeWithoutVersion(t *testing.T) {
	t.Parallel()
	reqs, err := mvjson.UnmarshalBatch([]byte(`{"requests": [{"universe": "sci-fi"}]}`), multiverse.DefaultSampling())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
}

func TestUnmarshalBatch_SamplingOverrides(t *testing.T) {
	t.Parallel()
	defaults := multiverse.DefaultSampling()
	data := []byte(`[{"universe": "cyberpunk", "temperature": 0.3, "max_length": 200}]`)

	reqs, err := mvjson.UnmarshalBatch(data, defaults)

	require.NoError(t, err)
	require.NotNil(t, reqs[0].Sampling)
	assert.Equal(t, multiverse.Sampling{
		MaxLength:         200,
		Temperature:       0.3,
		TopP:              defaults.TopP,
		RepetitionPenalty: defaults.RepetitionPenalty,
	}, *reqs[0].Sampling)
}

func TestUnmarshalBatch_ZeroOverrideIsKept(t *testing.T) {
	t.Parallel()
	reqs, err := mvjson.UnmarshalBatch([]byte(`[{"universe": "fantasy", "temperature": 0}]`), multiverse.DefaultSampling())
	require.NoError(t, err)
	require.NotNil(t, reqs[0].Sampling)
	assert.Zero(t, reqs[0].Sampling.Temperature)
}

func TestUnmarshalBatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "  ", "empty batch"},
		{"malformed array", `[{"universe":`, "unmarshal batch"},
		{"malformed envelope", `{"requests": 3}`, "unmarshal batch envelope"},
		{"future version", `{"version": 2, "requests": []}`, "unsupported batch version: 2"},
		{"missing universe", `[{"universe": "fantasy"}, {"details": ["a"]}]`, "request 1: missing universe"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := mvjson.UnmarshalBatch([]byte(tc.data), multiverse.DefaultSampling())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadBatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"universe": "superhero"}]`), 0o600))

	reqs, err := mvjson.LoadBatch(path, multiverse.DefaultSampling())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "superhero", reqs[0].Universe)
}

func TestLoadBatch_ErrorNamesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`nope`), 0o600))

	_, err := mvjson.LoadBatch(path, multiverse.DefaultSampling())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestLoadBatch_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := mvjson.LoadBatch(filepath.Join(t.TempDir(), "missing.json"), multiverse.DefaultSampling())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

func testCharacter() multiverse.Character {
	u, _ := multiverse.LookupUniverse("fantasy")
	details := []string{"Elf", "Mage", "Neutral Good", "Rivendell"}
	return multiverse.Character{
		ID:         "c-1",
		Universe:   "fantasy",
		Details:    details,
		Prompt:     multiverse.Assemble(u, details),
		Text:       "Aelar is an elven mage.",
		Path:       "/out/fantasy_20260314_150926.txt",
		Model:      "claude-sonnet-4-20250514",
		Sampling:   multiverse.DefaultSampling(),
		StopReason: multiverse.StopEndTurn,
		Usage:      multiverse.Usage{InputTokens: 40, OutputTokens: 120},
		CreatedAt:  time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
}

func TestMarshalCharacter_Envelope(t *testing.T) {
	t.Parallel()
	data, err := mvjson.MarshalCharacter(testCharacter())
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, float64(1), env["version"])
	assert.Equal(t, "fantasy", env["universe"])
	assert.Equal(t, "end_turn", env["stop_reason"])
	assert.Equal(t, "2026-03-14T15:09:26Z", env["created_at"])
	assert.NotContains(t, env, "prompt")

	sampling := env["sampling"].(map[string]any)
	assert.Equal(t, float64(350), sampling["max_length"])
	assert.Equal(t, 1.2, sampling["repetition_penalty"])
}

func TestUnmarshalCharacter_RebuildsPrompt(t *testing.T) {
	t.Parallel()
	want := testCharacter()
	data, err := mvjson.MarshalCharacter(want)
	require.NoError(t, err)

	got, err := mvjson.UnmarshalCharacter(data)

	require.NoError(t, err)
	assert.Equal(t, want.Prompt, got.Prompt)
	assert.Equal(t, want.Text, got.Text)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestUnmarshalCharacter_Version(t *testing.T) {
	t.Parallel()
	_, err := mvjson.UnmarshalCharacter([]byte(`{"version": 9}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported character version: 9")
}

func TestMarshalBatch(t *testing.T) {
	t.Parallel()
	results := []multiverse.BatchResult{
		{Index: 0, Request: multiverse.CharacterRequest{Universe: "fantasy"}, Character: testCharacter()},
		{Index: 1, Request: multiverse.CharacterRequest{Universe: "atlantis"}, Err: &multiverse.UnknownUniverseError{ID: "atlantis", Valid: []string{"fantasy", "horror"}}},
	}

	data, err := mvjson.MarshalBatch(results)
	require.NoError(t, err)

	var got mvjson.Batch
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, mvjson.Summary{Total: 2, Succeeded: 1, Failed: 1}, got.Summary)
	require.Len(t, got.Results, 2)
	require.NotNil(t, got.Results[0].Character)
	assert.Equal(t, "Aelar is an elven mage.", got.Results[0].Character.Text)
	assert.Nil(t, got.Results[0].Error)
	assert.Nil(t, got.Results[1].Character)
	assert.Equal(t, "atlantis", got.Results[1].Universe)
	require.NotNil(t, got.Results[1].Error)
	assert.Equal(t, mvjson.CodeUnknownUniverse, got.Results[1].Error.Code)
	assert.Equal(t, []string{"fantasy", "horror"}, got.Results[1].Error.Valid)
	assert.Contains(t, got.Results[1].Error.Message, "atlantis")
}

func intPtr(n int) *int { return &n }

func TestFromError(t *testing.T) {
	t.Parallel()
	upstream := errors.New("upstream 503")
	tests := []struct {
		name string
		err  error
		want mvjson.Error
	}{
		{
			name: "unknown universe",
			err:  &multiverse.UnknownUniverseError{ID: "atlantis", Valid: []string{"fantasy"}},
			want: mvjson.Error{Code: mvjson.CodeUnknownUniverse, Valid: []string{"fantasy"}},
		},
		{
			name: "detail count",
			err: fmt.Errorf("request 1: %w", &multiverse.DetailCountError{
				Universe: "fantasy", Expected: 4, Actual: 2, Fields: []string{"race", "class", "alignment", "region"},
			}),
			want: mvjson.Error{
				Code:     mvjson.CodeDetailCount,
				Expected: intPtr(4),
				Actual:   intPtr(2),
				Fields:   []string{"race", "class", "alignment", "region"},
			},
		},
		{
			name: "validation",
			err:  fmt.Errorf("blank detail: %w", multiverse.ErrValidation),
			want: mvjson.Error{Code: mvjson.CodeValidation},
		},
		{
			name: "generation",
			err:  &multiverse.GenerationError{Universe: "fantasy", Err: upstream},
			want: mvjson.Error{Code: mvjson.CodeGeneration, Cause: "upstream 503"},
		},
		{
			name: "canceled generation",
			err:  &multiverse.GenerationError{Universe: "fantasy", Err: context.Canceled},
			want: mvjson.Error{Code: mvjson.CodeCanceled},
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: mvjson.Error{Code: mvjson.CodeInternal},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mvjson.FromError(tc.err)
			tc.want.Message = tc.err.Error()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromUniverse(t *testing.T) {
	t.Parallel()
	u, err := multiverse.LookupUniverse("fantasy")
	require.NoError(t, err)

	got := mvjson.FromUniverse(u)

	assert.Equal(t, "fantasy", got.ID)
	assert.Equal(t, u.Fields, got.Fields)
	assert.Equal(t, u.Examples, got.Examples)
	assert.Equal(t, multiverse.Assemble(u, u.Examples), got.Example)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"example_prompt":`)
}
