package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/multiverse"
	"github.com/fwojciec/multiverse/anthropic"
	"github.com/fwojciec/multiverse/gemini"
	"github.com/fwojciec/multiverse/openai"
)

// apiKeys holds the provider API keys read from the environment.
type apiKeys struct {
	anthropic string
	gemini    string
	openai    string
}

// providerConfig selects and configures a provider.
type providerConfig struct {
	name    string // empty = auto-detect from keys
	apiKey  string // overrides the provider's env var
	baseURL string
}

// resolveProvider selects and constructs the provider. All env var values are
// passed in as parameters; env is only read in main().
func resolveProvider(ctx context.Context, pc providerConfig, keys apiKeys) (multiverse.Provider, error) {
	name := pc.name
	if name == "" {
		var found []string
		if keys.anthropic != "" {
			found = append(found, "anthropic")
		}
		if keys.gemini != "" {
			found = append(found, "gemini")
		}
		if keys.openai != "" {
			found = append(found, "openai")
		}
		switch len(found) {
		case 0:
			return nil, fmt.Errorf("no API key found: set ANTHROPIC_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY (or use -provider and -api-key flags)")
		case 1:
			name = found[0]
		default:
			return nil, fmt.Errorf("multiple API keys found (%v): use -provider flag to select", found)
		}
	}

	// Explicit key overrides env var.
	key := pc.apiKey
	switch name {
	case "anthropic":
		if key == "" {
			key = keys.anthropic
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use -api-key flag or environment variable)")
		}
		var opts []anthropic.Option
		if pc.baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(pc.baseURL))
		}
		return anthropic.New(key, opts...), nil
	case "gemini":
		if key == "" {
			key = keys.gemini
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
		}
		var opts []gemini.Option
		if pc.baseURL != "" {
			opts = append(opts, gemini.WithBaseURL(pc.baseURL))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		if key == "" {
			key = keys.openai
		}
		// Self-hosted servers usually run without a key and understand the
		// repetition_penalty extension; the hosted API needs a key and
		// rejects it.
		var opts []openai.Option
		if pc.baseURL != "" {
			opts = append(opts, openai.WithBaseURL(pc.baseURL), openai.WithRepetitionPenalty())
		} else if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use -api-key flag, environment variable, or -base-url for a self-hosted server)")
		}
		return openai.New(key, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"anthropic\", \"gemini\" or \"openai\"", name)
	}
}
