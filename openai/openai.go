// Package openai implements [multiverse.Provider] for OpenAI-compatible chat
// completion endpoints using the github.com/openai/openai-go SDK.
//
// Self-hosted servers (vLLM, llama.cpp, text-generation-inference) accept the
// same request shape, which makes this adapter the way to reach the
// GPT-2-style models the generator was first tuned for. Requests are
// non-streaming; the full reply is delivered as a single text delta.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/multiverse"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

// Interface compliance check.
var _ multiverse.Provider = (*Client)(nil)

// Client implements [multiverse.Provider] for chat completion endpoints.
type Client struct {
	client oai.Client
	model  string

	// repetitionPenalty sends Sampling.RepetitionPenalty as the non-standard
	// repetition_penalty field understood by self-hosted servers.
	repetitionPenalty bool
}

type config struct {
	opts              []option.RequestOption
	model             string
	repetitionPenalty bool
}

// Option configures a [Client].
type Option func(*config)

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(c *config) { c.opts = append(c.opts, option.WithBaseURL(url)) }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.opts = append(c.opts, option.WithHTTPClient(hc)) }
}

// WithModel sets the model used when a request carries none.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithRepetitionPenalty enables sending the repetition_penalty extension
// field. The official OpenAI API rejects unknown fields, so it is off by
// default.
func WithRepetitionPenalty() Option {
	return func(c *config) { c.repetitionPenalty = true }
}

// New creates a new [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := config{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, cfg.opts...)
	return &Client{
		client:            oai.NewClient(reqOpts...),
		model:             cfg.model,
		repetitionPenalty: cfg.repetitionPenalty,
	}
}

// Stream performs one chat completion and returns its reply as a
// [multiverse.Stream] holding a single text delta.
func (c *Client) Stream(ctx context.Context, req multiverse.Request) (multiverse.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(model),
		Messages:    []oai.ChatCompletionMessageParamUnion{oai.UserMessage(req.Prompt)},
		MaxTokens:   oai.Int(int64(req.Sampling.MaxLength)),
		Temperature: oai.Float(req.Sampling.Temperature),
		TopP:        oai.Float(req.Sampling.TopP),
	}
	var reqOpts []option.RequestOption
	if c.repetitionPenalty {
		reqOpts = append(reqOpts, option.WithJSONSet("repetition_penalty", req.Sampling.RepetitionPenalty))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("openai: HTTP %d: %w", apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	choice := resp.Choices[0]
	return &stream{
		text: choice.Message.Content,
		comp: multiverse.Completion{
			Text:          choice.Message.Content,
			StopReason:    mapFinishReason(choice.FinishReason),
			RawStopReason: choice.FinishReason,
			Usage: multiverse.Usage{
				InputTokens:  int(resp.Usage.PromptTokens),
				OutputTokens: int(resp.Usage.CompletionTokens),
			},
		},
	}, nil
}

func mapFinishReason(raw string) multiverse.StopReason {
	switch raw {
	case "stop":
		return multiverse.StopEndTurn
	case "length":
		return multiverse.StopLength
	default:
		return multiverse.StopUnknown
	}
}

// stream replays a finished completion through the pull-based interface.
type stream struct {
	text  string
	comp  multiverse.Completion
	state multiverse.StreamState
}

// Interface compliance check.
var _ multiverse.Stream = (*stream)(nil)

func (s *stream) Next() (multiverse.Event, error) {
	switch s.state {
	case multiverse.StreamStateNew:
		s.state = multiverse.StreamStateStreaming
		if s.text != "" {
			return multiverse.EventTextDelta{Delta: s.text}, nil
		}
		s.state = multiverse.StreamStateComplete
		return nil, io.EOF
	case multiverse.StreamStateStreaming:
		s.state = multiverse.StreamStateComplete
		return nil, io.EOF
	case multiverse.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", multiverse.ErrStreamClosed)
	default:
		return nil, io.EOF
	}
}

func (s *stream) State() multiverse.StreamState {
	return s.state
}

func (s *stream) Completion() (multiverse.Completion, error) {
	switch s.state {
	case multiverse.StreamStateNew:
		return multiverse.Completion{}, fmt.Errorf("openai: %w", multiverse.ErrStreamNotReady)
	case multiverse.StreamStateClosed:
		c := s.comp
		c.StopReason = multiverse.StopAborted
		c.RawStopReason = "aborted"
		return c, nil
	default:
		return s.comp, nil
	}
}

func (s *stream) Close() error {
	if s.state != multiverse.StreamStateComplete {
		s.state = multiverse.StreamStateClosed
	}
	return nil
}
