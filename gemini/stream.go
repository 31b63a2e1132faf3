package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/multiverse"
	"google.golang.org/genai"
)

// stream implements [multiverse.Stream] by wrapping the genai SDK's streaming
// iterator. A single chunk may carry several text parts, so deltas are queued
// in pending and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   multiverse.StreamState
	text    strings.Builder
	comp    multiverse.Completion
	pending []multiverse.Event
	err     error
}

// Interface compliance check.
var _ multiverse.Stream = (*stream)(nil)

func newStream(ctx context.Context, it iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(it)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: multiverse.StreamStateNew,
	}
}

func (s *stream) Next() (multiverse.Event, error) {
	switch s.state {
	case multiverse.StreamStateComplete:
		return nil, io.EOF
	case multiverse.StreamStateError:
		return nil, s.err
	case multiverse.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", multiverse.ErrStreamClosed)
	}

	for len(s.pending) == 0 {
		if err := s.ctx.Err(); err != nil {
			s.fail(fmt.Errorf("gemini: %w", err), multiverse.StopAborted, "aborted")
			return nil, s.err
		}
		chunk, err, ok := s.pull()
		if !ok {
			s.finish()
			return nil, io.EOF
		}
		s.state = multiverse.StreamStateStreaming
		if err != nil {
			if s.ctx.Err() != nil {
				s.fail(fmt.Errorf("gemini: %w", err), multiverse.StopAborted, "aborted")
			} else {
				s.fail(fmt.Errorf("gemini: %w", err), multiverse.StopError, "error")
			}
			return nil, s.err
		}
		if err := s.processChunk(chunk); err != nil {
			return nil, err
		}
	}

	evt := s.pending[0]
	s.pending = s.pending[1:]
	return evt, nil
}

func (s *stream) processChunk(chunk *genai.GenerateContentResponse) error {
	if chunk == nil {
		return nil
	}
	if u := chunk.UsageMetadata; u != nil {
		s.comp.Usage.InputTokens = int(u.PromptTokenCount)
		s.comp.Usage.OutputTokens = int(u.CandidatesTokenCount)
	}
	if len(chunk.Candidates) == 0 {
		if fb := chunk.PromptFeedback; fb != nil && fb.BlockReason != "" {
			s.fail(fmt.Errorf("gemini: prompt blocked: %s", fb.BlockReason), multiverse.StopError, string(fb.BlockReason))
			return s.err
		}
		return nil
	}

	cand := chunk.Candidates[0]
	if cand.FinishReason != "" {
		s.comp.RawStopReason = string(cand.FinishReason)
		s.comp.StopReason = mapFinishReason(cand.FinishReason)
	}
	if cand.Content == nil {
		return nil
	}
	for _, p := range cand.Content.Parts {
		// Thought summaries are not part of the character text.
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		s.text.WriteString(p.Text)
		s.pending = append(s.pending, multiverse.EventTextDelta{Delta: p.Text})
	}
	return nil
}

// finish marks normal completion. A stream that never reported a finish
// reason is treated as a clean end of turn.
func (s *stream) finish() {
	s.state = multiverse.StreamStateComplete
	if s.comp.StopReason == "" {
		s.comp.StopReason = multiverse.StopEndTurn
		s.comp.RawStopReason = string(multiverse.StopEndTurn)
	}
}

func (s *stream) fail(err error, reason multiverse.StopReason, raw string) {
	s.state = multiverse.StreamStateError
	s.err = err
	s.comp.StopReason = reason
	s.comp.RawStopReason = raw
}

func (s *stream) State() multiverse.StreamState {
	return s.state
}

func (s *stream) Completion() (multiverse.Completion, error) {
	if s.state == multiverse.StreamStateNew {
		return multiverse.Completion{}, fmt.Errorf("gemini: %w", multiverse.ErrStreamNotReady)
	}
	c := s.comp
	c.Text = s.text.String()
	return c, nil
}

func (s *stream) Close() error {
	if s.state != multiverse.StreamStateComplete && s.state != multiverse.StreamStateError {
		s.state = multiverse.StreamStateClosed
		s.comp.StopReason = multiverse.StopAborted
		s.comp.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func mapFinishReason(r genai.FinishReason) multiverse.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return multiverse.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return multiverse.StopLength
	default:
		return multiverse.StopUnknown
	}
}
