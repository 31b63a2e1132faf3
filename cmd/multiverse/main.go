// Command multiverse generates character descriptions for preset fictional
// universes.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... multiverse [flags] UNIVERSE [DETAIL...]
//	multiverse -list
//	multiverse -info UNIVERSE
//	multiverse -batch 'requests/**/*.json'
//	multiverse -serve[=ADDR]
//
// Without details the universe's example values are used. API keys are read
// from ANTHROPIC_API_KEY, GEMINI_API_KEY and OPENAI_API_KEY, and from a .env
// file in the working directory when one exists.
//
// Flags:
//
//	-list                      List universes and their fields
//	-info string               Show a universe's fields and example values
//	-max-length int            Upper bound on generated length, in tokens [50, 1000]
//	-temperature float         Sampling temperature [0, 1]
//	-top-p float               Nucleus sampling probability [0, 1]
//	-repetition-penalty float  Repetition penalty [1, 2]
//	-save                      Save characters to the output directory
//	-output-dir string         Directory for saved characters
//	-provider string           Provider: anthropic, gemini, openai (auto-detected from env vars if omitted)
//	-model string              Model ID (default: provider default)
//	-api-key string            API key (overrides provider's env var)
//	-base-url string           Provider API base URL (self-hosted servers for openai)
//	-batch string              Glob of batch files to run (supports **)
//	-concurrency int           Batch requests run at once
//	-json                      Write JSON instead of styled text
//	-stream                    Print text as it arrives
//	-serve[=ADDR]              Serve the HTTP API (default address from config)
//	-config string             Path to config file (default: $XDG_CONFIG_HOME/multiverse/config.toml)
//	-v                         Verbose logging
//	-version                   Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/multiverse"
	"github.com/fwojciec/multiverse/file"
	mvgin "github.com/fwojciec/multiverse/gin"
	"github.com/fwojciec/multiverse/goldmark"
	mvjson "github.com/fwojciec/multiverse/json"
	mvtoml "github.com/fwojciec/multiverse/toml"
	"github.com/fwojciec/multiverse/ttlcache"
	mvzap "github.com/fwojciec/multiverse/zap"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var version = "dev"

const renderWidth = 80

func main() {
	// Variables already set in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "multiverse: load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "multiverse: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	theme := multiverse.DefaultTheme()
	switch {
	case opts.version:
		fmt.Fprintf(stdout, "multiverse %s\n", version)
		return nil
	case opts.list:
		fmt.Fprint(stdout, goldmark.RenderUniverses(multiverse.Universes(), theme))
		return nil
	case opts.info != "":
		u, err := multiverse.LookupUniverse(opts.info)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, goldmark.RenderUniverse(u, theme))
		return nil
	}
	if !opts.serve.enabled && opts.batch == "" && len(opts.args) == 0 {
		return errors.New("missing universe: usage: multiverse [flags] UNIVERSE [DETAIL...] (see -list)")
	}

	cfg, err := loadConfig(opts, getenv)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	log, err := mvzap.New(level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	provider, err := resolveProvider(ctx,
		providerConfig{name: cfg.Provider, apiKey: cfg.APIKey, baseURL: cfg.BaseURL},
		apiKeys{
			anthropic: getenv("ANTHROPIC_API_KEY"),
			gemini:    getenv("GEMINI_API_KEY"),
			openai:    getenv("OPENAI_API_KEY"),
		})
	if err != nil {
		return err
	}
	if ttl := cfg.CacheTTL.Duration; ttl > 0 {
		cache := ttlcache.New(provider, ttl)
		defer cache.Close()
		provider = cache
	}

	defaults := cfg.DefaultSampling()
	gen := multiverse.NewGenerator(provider,
		multiverse.WithModel(cfg.Model),
		multiverse.WithLogger(log),
		multiverse.WithStore(file.NewStore(cfg.OutputDir)),
		multiverse.WithDefaultSampling(defaults),
		multiverse.WithConcurrency(cfg.Concurrency),
	)

	switch {
	case opts.serve.enabled:
		addr := opts.serve.addr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		gin.SetMode(gin.ReleaseMode)
		srv := mvgin.NewServer(gen, mvgin.WithLogger(log), mvgin.WithDefaultSampling(defaults))
		return srv.ListenAndServe(ctx, addr)
	case opts.batch != "":
		return runBatch(ctx, gen, opts, defaults, stdout, theme)
	default:
		return runSingle(ctx, gen, opts, stdout, theme)
	}
}

// loadConfig reads the config file and layers environment and flag
// overrides on top, in that order.
func loadConfig(opts options, getenv func(string) string) (mvtoml.Config, error) {
	cfg, err := mvtoml.Load(opts.configPath, getenv)
	if err != nil {
		return mvtoml.Config{}, err
	}
	cfg.ApplyEnv(getenv)

	if opts.set["provider"] {
		cfg.Provider = opts.provider
	}
	if opts.set["model"] {
		cfg.Model = opts.model
	}
	if opts.set["api-key"] {
		cfg.APIKey = opts.apiKey
	}
	if opts.set["base-url"] {
		cfg.BaseURL = opts.baseURL
	}
	if opts.set["output-dir"] {
		cfg.OutputDir = opts.outputDir
	}
	if opts.set["concurrency"] {
		cfg.Concurrency = opts.concurrency
	}
	if opts.set["max-length"] {
		cfg.Sampling.MaxLength = opts.maxLength
	}
	if opts.set["temperature"] {
		cfg.Sampling.Temperature = opts.temperature
	}
	if opts.set["top-p"] {
		cfg.Sampling.TopP = opts.topP
	}
	if opts.set["repetition-penalty"] {
		cfg.Sampling.RepetitionPenalty = opts.repetitionPenalty
	}
	if err := cfg.Validate(); err != nil {
		return mvtoml.Config{}, err
	}
	return cfg, nil
}

func runSingle(ctx context.Context, gen *multiverse.Generator, opts options, stdout io.Writer, theme multiverse.Theme) error {
	req := multiverse.CharacterRequest{
		Universe: opts.args[0],
		Details:  opts.args[1:],
		Save:     opts.save,
	}
	streaming := opts.stream && !opts.json
	if streaming {
		var cleaner multiverse.DeltaCleaner
		req.OnDelta = func(delta string) { fmt.Fprint(stdout, cleaner.Clean(delta)) }
	}

	// A persist failure still yields the character; show it, then report.
	c, err := gen.Generate(ctx, req)
	if err != nil && !errors.Is(err, multiverse.ErrPersist) {
		return err
	}

	switch {
	case opts.json:
		data, mErr := mvjson.MarshalCharacter(c)
		if mErr != nil {
			return mErr
		}
		fmt.Fprintf(stdout, "%s\n", data)
	case streaming:
		fmt.Fprintln(stdout)
		if c.Path != "" {
			fmt.Fprintf(stdout, "saved to %s\n", c.Path)
		}
	default:
		fmt.Fprint(stdout, goldmark.RenderCharacter(c, renderWidth, theme))
	}
	return err
}
