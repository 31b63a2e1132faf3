package multiverse

import (
	"errors"
	"io"
)

// Collect drains s, forwarding each text delta to onDelta when it is non-nil,
// and returns the assembled completion. A stream error is returned together
// with whatever partial completion the stream reports. Collect does not close
// the stream.
func Collect(s Stream, onDelta func(string)) (Completion, error) {
	var streamErr error
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if d, ok := evt.(EventTextDelta); ok && onDelta != nil {
			onDelta(d.Delta)
		}
	}

	c, err := s.Completion()
	if err != nil {
		if streamErr != nil {
			return Completion{}, streamErr
		}
		return Completion{}, err
	}
	return c, streamErr
}
