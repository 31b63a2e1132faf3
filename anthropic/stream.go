package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/multiverse"
)

// stream implements [multiverse.Stream] by parsing SSE events from an HTTP
// response body. A character description is plain text, so only text
// content blocks are forwarded.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   multiverse.StreamState
	text    strings.Builder
	comp    multiverse.Completion
	err     error // terminal error, if any
}

// Interface compliance check.
var _ multiverse.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		state:   multiverse.StreamStateNew,
	}
}

// Next reads the next text delta from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (multiverse.Event, error) {
	switch s.state {
	case multiverse.StreamStateComplete:
		return nil, io.EOF
	case multiverse.StreamStateError:
		return nil, s.err
	case multiverse.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", multiverse.ErrStreamClosed)
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = multiverse.StreamStateStreaming

		evt, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		// processEvent may set a terminal state (e.g. message_stop).
		if s.state == multiverse.StreamStateComplete {
			return nil, io.EOF
		}

		if evt != nil {
			return evt, nil
		}
		// Non-semantic event (ping, message_start, etc.) - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() multiverse.StreamState {
	return s.state
}

// Completion returns the text assembled so far.
func (s *stream) Completion() (multiverse.Completion, error) {
	if s.state == multiverse.StreamStateNew {
		return multiverse.Completion{}, fmt.Errorf("anthropic: %w", multiverse.ErrStreamNotReady)
	}
	c := s.comp
	c.Text = s.text.String()
	return c, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != multiverse.StreamStateComplete && s.state != multiverse.StreamStateError {
		s.state = multiverse.StreamStateClosed
		s.comp.StopReason = multiverse.StopAborted
		s.comp.RawStopReason = "aborted"
	}
	return s.body.Close()
}

// terminate records a terminal error and sets the appropriate state and stop reason.
func (s *stream) terminate(err error) {
	s.state = multiverse.StreamStateError
	if err == io.EOF {
		// message_stop sets StreamStateComplete before we get here, so a raw
		// EOF means the connection dropped mid-response.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		s.comp.StopReason = multiverse.StopError
		s.comp.RawStopReason = "error"
		return
	}
	s.err = err
	if s.ctx.Err() != nil {
		s.comp.StopReason = multiverse.StopAborted
		s.comp.RawStopReason = "aborted"
	} else {
		s.comp.StopReason = multiverse.StopError
		s.comp.RawStopReason = "error"
	}
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a multiverse.Event.
// Returns nil event for non-semantic events (ping, message_start, etc.).
func (s *stream) processEvent(eventType, data string) (multiverse.Event, error) {
	switch eventType {
	case "message_start":
		return nil, s.handleMessageStart(data)
	case "content_block_start":
		return s.handleContentBlockStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return nil, s.handleMessageDelta(data)
	case "message_stop":
		s.state = multiverse.StreamStateComplete
		return nil, nil
	case "error":
		return nil, s.handleError(data)
	default:
		// ping, content_block_stop and unknown event types carry nothing we use.
		return nil, nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_start: %w", err)
	}
	s.comp.Usage.InputTokens = evt.Message.Usage.InputTokens
	return nil
}

func (s *stream) handleContentBlockStart(data string) (multiverse.Event, error) {
	var evt sseContentBlockStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_start: %w", err)
	}
	if evt.ContentBlock.Type != "text" || evt.ContentBlock.Text == "" {
		return nil, nil
	}
	s.text.WriteString(evt.ContentBlock.Text)
	return multiverse.EventTextDelta{Delta: evt.ContentBlock.Text}, nil
}

func (s *stream) handleContentBlockDelta(data string) (multiverse.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	// Thinking and signature deltas are not part of the character text.
	if evt.Delta.Type != "text_delta" {
		return nil, nil
	}
	s.text.WriteString(evt.Delta.Text)
	return multiverse.EventTextDelta{Delta: evt.Delta.Text}, nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}

	s.comp.Usage.OutputTokens = evt.Usage.OutputTokens

	if evt.Delta.StopReason != nil {
		s.comp.RawStopReason = *evt.Delta.StopReason
		s.comp.StopReason = mapStopReason(*evt.Delta.StopReason)
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}

func mapStopReason(raw string) multiverse.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return multiverse.StopEndTurn
	case "max_tokens":
		return multiverse.StopLength
	default:
		return multiverse.StopUnknown
	}
}
