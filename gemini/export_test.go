package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/multiverse"
	"google.golang.org/genai"
)

// NewStreamFromIter wraps a response iterator in a stream without a live client.
func NewStreamFromIter(ctx context.Context, it iter.Seq2[*genai.GenerateContentResponse, error]) multiverse.Stream {
	return newStream(ctx, it)
}
