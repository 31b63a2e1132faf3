package multiverse

import (
	"context"
	"time"
)

// Character is a generated character description. Path is set only when the
// character was persisted.
type Character struct {
	ID         string
	Universe   string
	Details    []string
	Prompt     string
	Text       string
	Path       string
	Model      string
	Sampling   Sampling
	StopReason StopReason
	Usage      Usage
	CreatedAt  time.Time
}

// CharacterStore persists generated characters.
type CharacterStore interface {
	// Save writes c and returns the location it was written to.
	Save(ctx context.Context, c Character) (string, error)
}

// CharacterRequest describes one character to generate.
type CharacterRequest struct {
	Universe string
	Details  []string  // empty = the universe's example values
	Sampling *Sampling // nil = generator default
	Save     bool      // persist through the generator's store

	// OnDelta, when set, receives text deltas as they arrive. It is called
	// from the goroutine running the request.
	OnDelta func(delta string)
}

// BatchResult pairs a batch request with its outcome. Exactly one of
// Character and Err is meaningful.
type BatchResult struct {
	Index     int
	Request   CharacterRequest
	Character Character
	Err       error
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures in results.
func Summarize(results []BatchResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}
