// Package gin exposes character generation over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /universes
//	GET  /universes/:id
//	POST /characters
//	POST /characters/batch
package gin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/multiverse"
	mvjson "github.com/fwojciec/multiverse/json"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxBatch is the largest batch accepted by POST /characters/batch.
const DefaultMaxBatch = 100

const shutdownTimeout = 10 * time.Second

// Generator is the subset of *multiverse.Generator the server needs.
type Generator interface {
	Generate(ctx context.Context, req multiverse.CharacterRequest) (multiverse.Character, error)
	GenerateBatch(ctx context.Context, reqs []multiverse.CharacterRequest) []multiverse.BatchResult
}

// Interface compliance check.
var _ Generator = (*multiverse.Generator)(nil)

// Server routes HTTP requests to a Generator.
type Server struct {
	gen      Generator
	log      *zap.Logger
	defaults multiverse.Sampling
	maxBatch int
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDefaultSampling sets the sampling that per-request overrides are merged
// onto. It should match the generator's default.
func WithDefaultSampling(d multiverse.Sampling) Option {
	return func(s *Server) { s.defaults = d }
}

// WithMaxBatch bounds the number of requests in one batch call.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// NewServer creates a Server for gen.
func NewServer(gen Generator, opts ...Option) *Server {
	s := &Server{
		gen:      gen,
		log:      zap.NewNop(),
		defaults: multiverse.DefaultSampling(),
		maxBatch: DefaultMaxBatch,
	}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/healthz", s.health)
	r.GET("/universes", s.listUniverses)
	r.GET("/universes/:id", s.getUniverse)
	r.POST("/characters", s.createCharacter)
	r.POST("/characters/batch", s.createBatch)
	s.engine = r
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gin: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gin: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// GET /healthz
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /universes
func (s *Server) listUniverses(c *gin.Context) {
	us := multiverse.Universes()
	out := make([]mvjson.Universe, len(us))
	for i, u := range us {
		out[i] = mvjson.FromUniverse(u)
	}
	c.JSON(http.StatusOK, gin.H{"universes": out})
}

// GET /universes/:id
func (s *Server) getUniverse(c *gin.Context) {
	u, err := multiverse.LookupUniverse(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mvjson.FromUniverse(u))
}

// characterResponse carries a generated character. Warning is set when the
// character was generated but could not be saved.
type characterResponse struct {
	Character mvjson.Character `json:"character"`
	Warning   string           `json:"warning,omitempty"`
}

// POST /characters
func (s *Server) createCharacter(c *gin.Context) {
	var body mvjson.Request
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %v: %w", err, multiverse.ErrValidation))
		return
	}

	char, err := s.gen.Generate(c.Request.Context(), body.ToDomain(s.defaults))
	if err != nil && !errors.Is(err, multiverse.ErrPersist) {
		respondError(c, err)
		return
	}
	resp := characterResponse{Character: mvjson.FromCharacter(char)}
	if err != nil {
		resp.Warning = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// POST /characters/batch
//
// The body is a JSON array of requests or a {"requests": [...]} envelope.
// Individual failures are reported per item; the call itself succeeds.
func (s *Server) createBatch(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		respondError(c, fmt.Errorf("read body: %v: %w", err, multiverse.ErrValidation))
		return
	}
	reqs, err := mvjson.UnmarshalBatch(data, s.defaults)
	if err != nil {
		if !errors.Is(err, multiverse.ErrValidation) {
			err = fmt.Errorf("%v: %w", err, multiverse.ErrValidation)
		}
		respondError(c, err)
		return
	}
	if len(reqs) > s.maxBatch {
		respondError(c, fmt.Errorf("batch of %d exceeds limit of %d: %w", len(reqs), s.maxBatch, multiverse.ErrValidation))
		return
	}

	results := s.gen.GenerateBatch(c.Request.Context(), reqs)
	c.JSON(http.StatusOK, mvjson.FromBatch(results))
}
