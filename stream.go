package multiverse

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving deltas.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Completion() returns the text assembled so far. Behavior by stream state:
//   - StreamStateComplete: complete text, nil error.
//   - StreamStateError: partial text, nil error. StopReason is StopError
//     for transport/protocol failures, StopAborted for context cancellation.
//   - StreamStateStreaming: partial text, nil error.
//   - StreamStateNew: zero value, non-nil error.
//   - StreamStateClosed: partial text with StopReason = StopAborted.
//     Subsequent Next() calls return error.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Completion() (Completion, error)
	Close() error
}

// Completion is the assembled output of a Stream.
type Completion struct {
	Text          string
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
}
