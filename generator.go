package multiverse

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Generator turns character requests into provider calls. It holds no
// per-request state and is safe for concurrent use.
type Generator struct {
	provider    Provider
	store       CharacterStore
	log         *zap.Logger
	model       string
	sampling    Sampling
	concurrency int
	now         func() time.Time
	newID       func() string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithModel sets the model ID sent with every request.
// Empty string means the provider uses its default model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) { g.model = model }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithStore sets the store used for requests with Save set.
func WithStore(s CharacterStore) GeneratorOption {
	return func(g *Generator) { g.store = s }
}

// WithDefaultSampling replaces DefaultSampling for requests that carry no
// sampling override.
func WithDefaultSampling(s Sampling) GeneratorOption {
	return func(g *Generator) { g.sampling = s }
}

// WithConcurrency bounds how many batch requests run at once. Values below 1
// are ignored.
func WithConcurrency(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc sets the character ID source.
func WithIDFunc(f func() string) GeneratorOption {
	return func(g *Generator) { g.newID = f }
}

// NewGenerator creates a Generator backed by p.
func NewGenerator(p Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider:    p,
		log:         zap.NewNop(),
		sampling:    DefaultSampling(),
		concurrency: defaultConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate validates req, assembles the prompt, and invokes the provider.
//
// Failures are terminal and never retried: an *UnknownUniverseError or
// *DetailCountError for bad input, an ErrValidation error for blank details
// or out-of-range sampling, a *GenerationError when the provider fails. When
// req.Save is set and persisting fails, the generated character is returned
// together with a *PersistError.
func (g *Generator) Generate(ctx context.Context, req CharacterRequest) (Character, error) {
	if err := ctx.Err(); err != nil {
		return Character{}, err
	}

	details := req.Details
	if len(details) == 0 {
		u, err := LookupUniverse(req.Universe)
		if err != nil {
			return Character{}, err
		}
		details = u.Examples
	}
	u, err := Validate(req.Universe, details)
	if err != nil {
		return Character{}, err
	}
	details, err = NormalizeDetails(details)
	if err != nil {
		return Character{}, err
	}

	sampling := g.sampling
	if req.Sampling != nil {
		sampling = *req.Sampling
	}
	preq := Request{
		Model:    g.model,
		Prompt:   Assemble(u, details),
		Sampling: sampling,
	}
	if err := preq.Validate(); err != nil {
		return Character{}, err
	}

	log := g.log.With(zap.String("universe", u.ID))
	log.Debug("generating character",
		zap.Strings("details", details),
		zap.Int("max_length", sampling.MaxLength),
		zap.Float64("temperature", sampling.Temperature),
	)
	start := time.Now()

	completion, err := g.invoke(ctx, preq, req.OnDelta)
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		return Character{}, &GenerationError{Universe: u.ID, Err: err}
	}

	c := Character{
		ID:         g.newID(),
		Universe:   u.ID,
		Details:    details,
		Prompt:     preq.Prompt,
		Text:       completion.Text,
		Model:      g.model,
		Sampling:   sampling,
		StopReason: completion.StopReason,
		Usage:      completion.Usage,
		CreatedAt:  g.now(),
	}
	log.Info("generated character",
		zap.String("id", c.ID),
		zap.Int("chars", len(c.Text)),
		zap.String("stop_reason", string(c.StopReason)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !req.Save {
		return c, nil
	}
	if g.store == nil {
		return c, &PersistError{Err: errors.New("no character store configured")}
	}
	path, err := g.store.Save(ctx, c)
	if err != nil {
		log.Warn("save failed", zap.Error(err))
		var pe *PersistError
		if errors.As(err, &pe) {
			return c, err
		}
		return c, &PersistError{Err: err}
	}
	c.Path = path
	log.Info("saved character", zap.String("path", path))
	return c, nil
}

func (g *Generator) invoke(ctx context.Context, req Request, onDelta func(string)) (Completion, error) {
	stream, err := g.provider.Stream(ctx, req)
	if err != nil {
		return Completion{}, err
	}
	defer stream.Close()

	c, err := Collect(stream, onDelta)
	if err != nil {
		return Completion{}, err
	}
	c.Text = CleanText(c.Text)
	if c.Text == "" {
		return Completion{}, errors.New("provider returned no text")
	}
	return c, nil
}

// QuickGenerate generates a character for universe from its example values.
// A nil sampling uses the generator default.
func (g *Generator) QuickGenerate(ctx context.Context, universe string, sampling *Sampling, save bool) (Character, error) {
	return g.Generate(ctx, CharacterRequest{Universe: universe, Sampling: sampling, Save: save})
}

// GenerateBatch runs reqs concurrently, at most the configured concurrency at
// a time. Results are index-aligned with reqs and every request runs to
// completion independently: one failure never cancels the others.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []CharacterRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i, req := range reqs {
		eg.Go(func() error {
			c, err := g.Generate(ctx, req)
			results[i] = BatchResult{Index: i, Request: req, Character: c, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	s := Summarize(results)
	g.log.Info("batch complete",
		zap.Int("total", s.Total),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
	)
	return results
}
