package main

import (
	"flag"
	"io"
	"strconv"
)

type options struct {
	list       bool
	info       string
	version    bool
	verbose    bool
	configPath string

	provider string
	model    string
	apiKey   string
	baseURL  string

	maxLength         int
	temperature       float64
	topP              float64
	repetitionPenalty float64

	save        bool
	outputDir   string
	batch       string
	concurrency int
	json        bool
	stream      bool
	serve       serveFlag

	args []string
	set  map[string]bool // flags given on the command line
}

// serveFlag is a boolean flag that optionally carries an address:
// -serve uses the configured address, -serve=:9000 overrides it.
type serveFlag struct {
	enabled bool
	addr    string
}

func (f *serveFlag) String() string {
	if f == nil || !f.enabled {
		return "false"
	}
	if f.addr == "" {
		return "true"
	}
	return f.addr
}

func (f *serveFlag) Set(s string) error {
	if b, err := strconv.ParseBool(s); err == nil {
		f.enabled, f.addr = b, ""
		return nil
	}
	f.enabled, f.addr = true, s
	return nil
}

func (f *serveFlag) IsBoolFlag() bool { return true }

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("multiverse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&o.list, "list", false, "List universes and their fields")
	fs.StringVar(&o.info, "info", "", "Show a universe's fields and example values")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.BoolVar(&o.verbose, "v", false, "Verbose logging")
	fs.StringVar(&o.configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/multiverse/config.toml)")

	fs.StringVar(&o.provider, "provider", "", "Provider: anthropic, gemini, openai (auto-detected from env vars if omitted)")
	fs.StringVar(&o.model, "model", "", "Model ID (provider-specific)")
	fs.StringVar(&o.apiKey, "api-key", "", "API key (overrides provider's env var)")
	fs.StringVar(&o.baseURL, "base-url", "", "Provider API base URL")

	fs.IntVar(&o.maxLength, "max-length", 0, "Upper bound on generated length, in tokens [50, 1000]")
	fs.Float64Var(&o.temperature, "temperature", 0, "Sampling temperature [0, 1]")
	fs.Float64Var(&o.topP, "top-p", 0, "Nucleus sampling probability [0, 1]")
	fs.Float64Var(&o.repetitionPenalty, "repetition-penalty", 0, "Repetition penalty [1, 2]")

	fs.BoolVar(&o.save, "save", false, "Save characters to the output directory")
	fs.StringVar(&o.outputDir, "output-dir", "", "Directory for saved characters")
	fs.StringVar(&o.batch, "batch", "", "Glob of batch files to run (supports **)")
	fs.IntVar(&o.concurrency, "concurrency", 0, "Batch requests run at once")
	fs.BoolVar(&o.json, "json", false, "Write JSON instead of styled text")
	fs.BoolVar(&o.stream, "stream", false, "Print text as it arrives")
	fs.Var(&o.serve, "serve", "Serve the HTTP API; -serve=ADDR overrides the configured address")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.args = fs.Args()
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}
