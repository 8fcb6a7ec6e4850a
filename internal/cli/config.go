package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/config"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/llm"
	"github.com/charliek/wip/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wip configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up wip configuration interactively",
	Long: `Set up wip configuration interactively.

This command creates the configuration file at ~/.wip/config.yaml with
your scan directories, git author name, and optional AI settings.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	// Init requires interactive mode
	if !ui.CanPrompt() {
		return fmt.Errorf("config init requires interactive mode")
	}

	prompt := ui.NewPrompt()
	out := GetOutput()

	configPath := config.ConfigPath(cfgFile)

	// Check if config already exists
	if config.Exists(configPath) {
		confirmed, err := prompt.Confirm("Configuration already exists. Overwrite?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			out.Println("Aborted.")
			return nil
		}
	}

	out.Println("Setting up wip configuration...")
	out.Println()

	// Scan directories, defaulting to wherever the user is now
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	var dirDefaults []string
	if wd != "" {
		dirDefaults = []string{wd}
	}
	dirs, err := prompt.StringList("Directories to scan (comma-separated)", dirDefaults)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("at least one directory is required")
	}

	// Author name, pre-filled from git config when available
	author, err := prompt.String("Your git author name", gitx.DetectAuthor())
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Directories = dirs
	cfg.Author = author

	// Optional AI setup
	out.Println()
	wantAI, err := prompt.Confirm("Set up AI briefings (requires an API key)?", false)
	if err != nil {
		return err
	}
	if wantAI {
		providers := llm.List()
		out.Println()
		out.Println("Available providers:")
		for i, name := range providers {
			out.Printf("  %d. %s\n", i+1, name)
		}

		provider, err := prompt.String("Provider", providers[0])
		if err != nil {
			return err
		}
		if !validProvider(providers, provider) {
			return fmt.Errorf("unknown provider: %s", provider)
		}

		model, err := prompt.String("Model (blank for provider default)", "")
		if err != nil {
			return err
		}

		keyEnv, err := prompt.String("API key environment variable", llm.KeyEnvFor(provider))
		if err != nil {
			return err
		}

		cfg.LLM = config.LLMConfig{Provider: provider, Model: model}
		// Only record the env var when it differs from the provider's
		// conventional one
		if keyEnv != llm.KeyEnvFor(provider) {
			cfg.LLM.APIKeyEnv = keyEnv
		}
	}

	// Save config
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	out.Println()
	out.Success("Configuration saved to %s", configPath)
	out.Println()
	out.Println("Next steps:")
	out.Println("  1. Run 'wip' to see your briefing")
	out.Println("  2. Run 'wip add <note>' to track in-flight work")
	out.Println("  3. Run 'wip doctor' to verify your setup")

	return nil
}

func validProvider(providers []string, name string) bool {
	for _, p := range providers {
		if p == name {
			return true
		}
	}
	return false
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := GetOutput()

	path := config.ConfigPath(cfgFile)
	if !config.Exists(path) {
		return domain.Errorf(domain.ErrNotConfigured, "no config at %s; run `wip config init` to create one", path)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(map[string]interface{}{
			"path":            loaded.Path(),
			"directories":     loaded.Directories,
			"author":          loaded.Author,
			"scan_depth":      loaded.ScanDepth,
			"recent_days":     loaded.RecentDays,
			"jobs":            loaded.Jobs,
			"untracked_stats": loaded.UntrackedStats,
			"db_path":         loaded.WorklistPath(),
			"agents": map[string]interface{}{
				"authors":         loaded.Agents.Authors,
				"branch_patterns": loaded.Agents.BranchPatterns,
			},
			"llm": map[string]interface{}{
				"provider":    loaded.LLM.Provider,
				"model":       loaded.LLM.Model,
				"api_key_env": loaded.LLM.APIKeyEnv,
			},
		})
	}

	out.Printf("Config: %s\n", loaded.Path())
	out.Println()
	out.Printf("directories = %v\n", loaded.Directories)
	out.Printf("author      = %s\n", loaded.Author)
	out.Printf("scan_depth  = %d\n", loaded.ScanDepth)
	out.Printf("recent_days = %d\n", loaded.RecentDays)
	out.Printf("jobs        = %d\n", loaded.Jobs)
	out.Printf("db_path     = %s\n", loaded.WorklistPath())
	if loaded.UntrackedStats {
		out.Println("untracked_stats = true")
	}

	out.Println()
	out.Println("[agents]")
	out.Printf("authors         = %v\n", loaded.Agents.Authors)
	out.Printf("branch_patterns = %v\n", loaded.Agents.BranchPatterns)

	if loaded.LLM.Provider != "" {
		out.Println()
		out.Println("[llm]")
		out.Printf("provider    = %s\n", loaded.LLM.Provider)
		if loaded.LLM.Model != "" {
			out.Printf("model       = %s\n", loaded.LLM.Model)
		} else {
			out.Println("model       = (provider default)")
		}
		out.Printf("api_key_env = %s\n", llmKeyEnvLabel(loaded))
	}

	return nil
}

// llmKeyEnvLabel names the env var the configured provider will read.
func llmKeyEnvLabel(c *config.Config) string {
	if c.LLM.APIKeyEnv != "" {
		return c.LLM.APIKeyEnv
	}
	return llm.KeyEnvFor(c.LLM.Provider)
}
