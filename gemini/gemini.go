// Package gemini implements [multiverse.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [multiverse.Stream]
// interface.
//
// Gemini has no repetition penalty; it is mapped onto frequency_penalty as
// RepetitionPenalty-1, so the neutral 1.0 sends no penalty.
package gemini

const defaultModel = "gemini-2.5-flash"
