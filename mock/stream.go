package mock

import "github.com/fwojciec/multiverse"

// Interface compliance check.
var _ multiverse.Stream = (*Stream)(nil)

// Stream is a test double for multiverse.Stream.
// Set the function fields for the methods you need. NextFn and CompletionFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn       func() (multiverse.Event, error)
	StateFn      func() multiverse.StreamState
	CompletionFn func() (multiverse.Completion, error)
	CloseFn      func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (multiverse.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() multiverse.StreamState {
	if s.StateFn == nil {
		return multiverse.StreamStateNew
	}
	return s.StateFn()
}

// Completion delegates to CompletionFn.
func (s *Stream) Completion() (multiverse.Completion, error) {
	return s.CompletionFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
