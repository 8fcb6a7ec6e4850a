// Package llm turns scan results into narrative briefings through an
// LLM provider.
//
// Providers are thin HTTP clients over each vendor's chat endpoint; no
// vendor SDKs are pulled in. The scan core never touches this package —
// ai commands consume finished RepoStatus values, the same as the
// terminal renderer.
package llm

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
)

// Response is a complete, non-streamed model reply.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Provider is a chat-completion backend. Stream pushes response text to
// fn as it arrives; Complete waits for the whole reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (Response, error)
	Stream(ctx context.Context, system, user string, fn func(text string)) error
}

// providerEntry pairs a constructor with the vendor's conventional API
// key environment variable.
type providerEntry struct {
	keyEnv string
	build  func(apiKey, model string) Provider
}

var providers = map[string]providerEntry{
	"anthropic": {
		keyEnv: "ANTHROPIC_API_KEY",
		build: func(apiKey, model string) Provider {
			return newAnthropic(apiKey, model)
		},
	},
	"openai": {
		keyEnv: "OPENAI_API_KEY",
		build: func(apiKey, model string) Provider {
			return newOpenAI(apiKey, model)
		},
	},
	"gemini": {
		keyEnv: "GEMINI_API_KEY",
		build: func(apiKey, model string) Provider {
			return newGemini(apiKey, model)
		},
	},
}

// List returns the available provider names, sorted.
func List() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyEnvFor returns the conventional API key environment variable for a
// provider, or "" for an unknown provider.
func KeyEnvFor(name string) string {
	return providers[name].keyEnv
}

// New builds the named provider. The API key is resolved from the
// configured environment variable first, then the provider's
// conventional variable, then the generic WIP_LLM_API_KEY fallback.
func New(name, model, apiKeyEnv string) (Provider, error) {
	entry, ok := providers[name]
	if !ok {
		return nil, domain.Errorf(domain.ErrLLMError,
			"unknown provider %q (available: %s)", name, strings.Join(List(), ", "))
	}

	apiKey := resolveKey(apiKeyEnv, entry.keyEnv)
	if apiKey == "" {
		return nil, domain.Errorf(domain.ErrLLMNotConfigured,
			"no API key for %s: set %s or %s", name, entry.keyEnv, constants.LLMKeyEnvVar)
	}

	return entry.build(apiKey, model), nil
}

func resolveKey(envVars ...string) string {
	envVars = append(envVars, constants.LLMKeyEnvVar)
	for _, env := range envVars {
		if env == "" {
			continue
		}
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			return key
		}
	}
	return ""
}
