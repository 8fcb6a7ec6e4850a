package llm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
)

func TestList(t *testing.T) {
	require.Equal(t, []string{"anthropic", "gemini", "openai"}, List())
}

func TestKeyEnvFor(t *testing.T) {
	require.Equal(t, "ANTHROPIC_API_KEY", KeyEnvFor("anthropic"))
	require.Equal(t, "OPENAI_API_KEY", KeyEnvFor("openai"))
	require.Empty(t, KeyEnvFor("skynet"))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("skynet", "", "")
	require.ErrorIs(t, err, domain.ErrLLMError)
	require.ErrorContains(t, err, "unknown provider")
}

func TestNewMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv(constants.LLMKeyEnvVar, "")

	_, err := New("anthropic", "", "")
	require.ErrorIs(t, err, domain.ErrLLMNotConfigured)
	require.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestNewKeyResolutionOrder(t *testing.T) {
	t.Setenv("MY_CUSTOM_KEY", "custom")
	t.Setenv("ANTHROPIC_API_KEY", "conventional")
	t.Setenv(constants.LLMKeyEnvVar, "generic")

	// Configured env var wins
	p, err := New("anthropic", "", "MY_CUSTOM_KEY")
	require.NoError(t, err)
	require.Equal(t, "custom", p.(*anthropicProvider).apiKey)

	// Conventional env var next
	p, err = New("anthropic", "", "")
	require.NoError(t, err)
	require.Equal(t, "conventional", p.(*anthropicProvider).apiKey)

	// Generic fallback last
	t.Setenv("ANTHROPIC_API_KEY", "")
	p, err = New("anthropic", "", "")
	require.NoError(t, err)
	require.Equal(t, "generic", p.(*anthropicProvider).apiKey)
}

func TestNewAppliesDefaultModels(t *testing.T) {
	t.Setenv(constants.LLMKeyEnvVar, "k")

	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{provider: "anthropic", want: anthropicDefaultModel},
		{provider: "openai", want: openaiDefaultModel},
		{provider: "gemini", want: geminiDefaultModel},
		{provider: "anthropic", model: "claude-opus-4", want: "claude-opus-4"},
	}

	for _, tt := range tests {
		p, err := New(tt.provider, tt.model, "")
		require.NoError(t, err)
		require.Equal(t, tt.provider, p.Name())

		switch impl := p.(type) {
		case *anthropicProvider:
			require.Equal(t, tt.want, impl.model)
		case *openaiProvider:
			require.Equal(t, tt.want, impl.model)
		case *geminiProvider:
			require.Equal(t, tt.want, impl.model)
		default:
			t.Fatalf("unexpected provider type %T", p)
		}
	}
}
