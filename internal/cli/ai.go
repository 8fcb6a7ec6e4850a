package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/llm"
	"github.com/charliek/wip/internal/logging"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI summaries of your work in progress",
	Long: `AI commands feed the scan results to the configured LLM provider.

Configure a provider with 'wip config init' and export the matching
API key environment variable.`,
}

var aiBriefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Narrative morning briefing",
	RunE:  runAIBriefing,
}

var aiStandupCmd = &cobra.Command{
	Use:   "standup",
	Short: "Draft a standup update from yesterday's activity",
	RunE:  runAIStandup,
}

var aiAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your repos and work items",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIAsk,
}

func init() {
	aiCmd.AddCommand(aiBriefingCmd)
	aiCmd.AddCommand(aiStandupCmd)
	aiCmd.AddCommand(aiAskCmd)
}

func runAIBriefing(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	repos, items, err := scanForPrompt(ctx)
	if err != nil {
		return err
	}

	system, user := llm.BuildBriefingPrompt(repos, items)
	return completeOrStream(ctx, system, user)
}

func runAIStandup(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	repos, items, err := scanForPrompt(ctx)
	if err != nil {
		return err
	}

	system, user := llm.BuildStandupPrompt(repos, items)
	return completeOrStream(ctx, system, user)
}

func runAIAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	repos, items, err := scanForPrompt(ctx)
	if err != nil {
		return err
	}

	system, user := llm.BuildQueryPrompt(args[0], repos, items)
	return completeOrStream(ctx, system, user)
}

// resolveProvider builds the configured LLM provider.
func resolveProvider() (llm.Provider, error) {
	if cfg.LLM.Provider == "" {
		return nil, domain.Errorf(domain.ErrLLMNotConfigured, "run `wip config init` to set one up")
	}
	return llm.New(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIKeyEnv)
}

// scanForPrompt runs the scan and collects open work items for prompt
// building. The worklist is optional context; a broken store does not
// fail the command.
func scanForPrompt(ctx context.Context) ([]domain.RepoStatus, []domain.Item, error) {
	repos, err := scanRepos(ctx)
	if err != nil {
		return nil, nil, err
	}

	var items []domain.Item
	if store, err := openWorklist(); err == nil {
		items, _ = store.Items(ctx, false)
		store.Close()
	} else {
		logging.Logger.Warn("worklist unavailable", "error", err)
	}

	return repos, items, nil
}

// completeOrStream sends the prompt to the configured provider,
// streaming text to stdout, or returning the full response as JSON
// when --json is set.
func completeOrStream(ctx context.Context, system, user string) error {
	out := GetOutput()

	provider, err := resolveProvider()
	if err != nil {
		return err
	}

	logging.Logger.Debug("llm request", "provider", provider.Name())

	if out.IsJSON() {
		resp, err := provider.Complete(ctx, system, user)
		if err != nil {
			return err
		}
		return out.JSON(map[string]interface{}{
			"provider":      provider.Name(),
			"model":         resp.Model,
			"text":          resp.Text,
			"input_tokens":  resp.InputTokens,
			"output_tokens": resp.OutputTokens,
		})
	}

	err = provider.Stream(ctx, system, user, func(chunk string) {
		out.Printf("%s", chunk)
	})
	if err != nil {
		return err
	}
	out.Println()
	return nil
}
