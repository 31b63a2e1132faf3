// Package toml loads multiverse configuration from a TOML file.
package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/multiverse"
)

// Providers accepted in Config.Provider. An empty provider is also accepted
// and means the command picks one from the API keys in the environment.
var Providers = []string{"anthropic", "gemini", "openai"}

// Config is the user's multiverse configuration.
type Config struct {
	Provider    string         `toml:"provider"`
	Model       string         `toml:"model"`
	APIKey      string         `toml:"api_key"`
	BaseURL     string         `toml:"base_url"`
	OutputDir   string         `toml:"output_dir"`
	Concurrency int            `toml:"concurrency"`
	CacheTTL    Duration       `toml:"cache_ttl"`
	Log         LogConfig      `toml:"log"`
	Sampling    SamplingConfig `toml:"sampling"`
	Server      ServerConfig   `toml:"server"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SamplingConfig holds the default sampling parameters.
type SamplingConfig struct {
	MaxLength         int     `toml:"max_length"`
	Temperature       float64 `toml:"temperature"`
	TopP              float64 `toml:"top_p"`
	RepetitionPenalty float64 `toml:"repetition_penalty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "10m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	s := multiverse.DefaultSampling()
	return Config{
		OutputDir:   "characters",
		Concurrency: 4,
		Log:         LogConfig{Level: "warn", Format: "console"},
		Sampling: SamplingConfig{
			MaxLength:         s.MaxLength,
			Temperature:       s.Temperature,
			TopP:              s.TopP,
			RepetitionPenalty: s.RepetitionPenalty,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// ConfigDir returns the config directory path, reading the environment
// through getenv.
// Resolution order: $MULTIVERSE_CONFIG_DIR > $XDG_CONFIG_HOME/multiverse > $HOME/.config/multiverse
func ConfigDir(getenv func(string) string) string {
	if dir := getenv("MULTIVERSE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "multiverse")
	}
	home := getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return filepath.Join(os.TempDir(), "multiverse-config")
		}
	}
	return filepath.Join(home, ".config", "multiverse")
}

// ConfigPath returns the full path to the default config file.
func ConfigPath(getenv func(string) string) string {
	return filepath.Join(ConfigDir(getenv), "config.toml")
}

// Load reads the config file at path. An empty path means ConfigPath, and a
// missing default file yields Default. Fields absent from the file keep their
// default values. Unknown keys are rejected.
func Load(path string, getenv func(string) string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigPath(getenv)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("toml: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("toml: %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MULTIVERSE_PROVIDER, MULTIVERSE_MODEL and
// MULTIVERSE_BASE_URL when they are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("MULTIVERSE_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := getenv("MULTIVERSE_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("MULTIVERSE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
}

// Validate checks the configuration for values no command can run with.
func (c Config) Validate() error {
	known := c.Provider == ""
	for _, p := range Providers {
		if c.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("provider must be one of %s, got %q: %w", strings.Join(Providers, ", "), c.Provider, multiverse.ErrValidation)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d: %w", c.Concurrency, multiverse.ErrValidation)
	}
	if c.CacheTTL.Duration < 0 {
		return fmt.Errorf("cache_ttl must not be negative: %w", multiverse.ErrValidation)
	}
	return c.DefaultSampling().Validate()
}

// DefaultSampling returns the configured sampling defaults.
func (c Config) DefaultSampling() multiverse.Sampling {
	return multiverse.Sampling{
		MaxLength:         c.Sampling.MaxLength,
		Temperature:       c.Sampling.Temperature,
		TopP:              c.Sampling.TopP,
		RepetitionPenalty: c.Sampling.RepetitionPenalty,
	}
}
