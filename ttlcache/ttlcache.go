// Package ttlcache provides a [multiverse.Provider] decorator that caches
// completed generations in a github.com/jellydator/ttlcache/v3 cache.
//
// Sampling is stochastic, so two identical requests normally produce
// different characters. Caching trades that variety for fewer upstream calls
// and is meant for demo servers and repeated batch runs.
package ttlcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/multiverse"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultTTL is used when New is given a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// Interface compliance check.
var _ multiverse.Provider = (*Provider)(nil)

// Provider serves repeated requests from a TTL cache and forwards misses to
// the wrapped provider. Only streams that ran to completion are cached.
type Provider struct {
	next  multiverse.Provider
	cache *ttlcache.Cache[string, multiverse.Completion]
}

// New wraps next with a cache whose entries expire after ttl.
func New(next multiverse.Provider, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := ttlcache.New[string, multiverse.Completion](
		ttlcache.WithTTL[string, multiverse.Completion](ttl),
		ttlcache.WithDisableTouchOnHit[string, multiverse.Completion](),
	)
	go c.Start()
	return &Provider{next: next, cache: c}
}

// Close stops the cache expiration loop.
func (p *Provider) Close() {
	p.cache.Stop()
}

// Len returns the number of cached completions.
func (p *Provider) Len() int {
	return p.cache.Len()
}

// Stream replays a cached completion when one exists for req. Otherwise it
// opens a stream on the wrapped provider and records the result once the
// stream completes.
func (p *Provider) Stream(ctx context.Context, req multiverse.Request) (multiverse.Stream, error) {
	key := Key(req)
	if item := p.cache.Get(key); item != nil {
		return newReplayStream(item.Value()), nil
	}
	s, err := p.next.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	return &recordingStream{Stream: s, onComplete: func(c multiverse.Completion) {
		p.cache.Set(key, c, ttlcache.DefaultTTL)
	}}, nil
}

// Key identifies a request by model, prompt and every sampling parameter.
func Key(req multiverse.Request) string {
	s := req.Sampling
	return fmt.Sprintf("%s\x00%d\x00%g\x00%g\x00%g\x00%s",
		req.Model, s.MaxLength, s.Temperature, s.TopP, s.RepetitionPenalty, req.Prompt)
}

// recordingStream passes events through and hands the completion to
// onComplete when the wrapped stream ends cleanly.
type recordingStream struct {
	multiverse.Stream
	onComplete func(multiverse.Completion)
}

func (s *recordingStream) Next() (multiverse.Event, error) {
	evt, err := s.Stream.Next()
	if errors.Is(err, io.EOF) && s.onComplete != nil && s.Stream.State() == multiverse.StreamStateComplete {
		if c, cerr := s.Stream.Completion(); cerr == nil && c.Text != "" {
			s.onComplete(c)
		}
		s.onComplete = nil
	}
	return evt, err
}

// replayStream delivers a cached completion as a single text delta.
type replayStream struct {
	comp  multiverse.Completion
	state multiverse.StreamState
}

func newReplayStream(c multiverse.Completion) *replayStream {
	return &replayStream{comp: c}
}

func (s *replayStream) Next() (multiverse.Event, error) {
	switch s.state {
	case multiverse.StreamStateNew:
		s.state = multiverse.StreamStateStreaming
		return multiverse.EventTextDelta{Delta: s.comp.Text}, nil
	case multiverse.StreamStateClosed:
		return nil, fmt.Errorf("ttlcache: %w", multiverse.ErrStreamClosed)
	default:
		s.state = multiverse.StreamStateComplete
		return nil, io.EOF
	}
}

func (s *replayStream) State() multiverse.StreamState {
	return s.state
}

func (s *replayStream) Completion() (multiverse.Completion, error) {
	switch s.state {
	case multiverse.StreamStateNew:
		return multiverse.Completion{}, fmt.Errorf("ttlcache: %w", multiverse.ErrStreamNotReady)
	case multiverse.StreamStateClosed:
		c := s.comp
		c.StopReason = multiverse.StopAborted
		c.RawStopReason = "aborted"
		return c, nil
	default:
		return s.comp, nil
	}
}

func (s *replayStream) Close() error {
	if s.state != multiverse.StreamStateComplete {
		s.state = multiverse.StreamStateClosed
	}
	return nil
}
