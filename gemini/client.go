package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/multiverse"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ multiverse.Provider = (*Client)(nil)

// Client implements [multiverse.Provider] for the Google Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	baseURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model used when a request carries none.
// Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Stream sends the prompt as a single user turn and returns a
// [multiverse.Stream] that emits text deltas.
func (c *Client) Stream(ctx context.Context, req multiverse.Request) (multiverse.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	it := c.client.Models.GenerateContentStream(ctx, model, contents, BuildConfig(req.Sampling))
	return newStream(ctx, it), nil
}

// BuildConfig maps sampling parameters onto a generation config.
// Exported for testing.
func BuildConfig(s multiverse.Sampling) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(s.MaxLength),
		Temperature:     genai.Ptr(float32(s.Temperature)),
		TopP:            genai.Ptr(float32(s.TopP)),
	}
	if penalty := s.RepetitionPenalty - 1; penalty > 0 {
		config.FrequencyPenalty = genai.Ptr(float32(penalty))
	}
	return config
}
