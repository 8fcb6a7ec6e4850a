package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/config"
	"github.com/charliek/wip/internal/discovery"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/llm"
	"github.com/charliek/wip/internal/worklist"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify configuration and environment",
	Long: `Verify that wip is properly set up.

This command checks:
- Configuration file exists and is valid
- git is on PATH
- An author name is configured or detectable
- Every scan directory exists and is readable
- The worklist database opens
- The configured LLM provider has its API key (optional)`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	out := GetOutput()
	allOK := true

	out.Println("Checking wip configuration...")
	out.Println()

	// Check config file
	configPath := config.ConfigPath(cfgFile)
	out.Printf("Config file (%s): ", configPath)
	loaded, err := config.Load(cfgFile)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			out.Println("MISSING")
			out.Println("  Run 'wip config init' to create configuration")
			return nil
		}
		out.Println("INVALID")
		out.Printf("  Error: %v\n", err)
		return err
	}
	out.Println("OK")

	// Check git binary
	out.Printf("Git binary: ")
	if gitPath, err := exec.LookPath("git"); err != nil {
		out.Println("NOT FOUND")
		out.Println("  Install git; every scan facet depends on it")
		allOK = false
	} else {
		out.Println(gitPath)
	}

	// Check author
	out.Printf("Author: ")
	detected := gitx.DetectAuthor()
	switch {
	case loaded.Author != "":
		out.Println(loaded.Author)
	case detected != "":
		out.Printf("%s (from git config; set author in config to pin it)\n", detected)
	default:
		out.Println("NOT SET")
		out.Println("  Recent commits will be empty; set author in config")
	}

	// Check scan directories
	if len(loaded.Directories) == 0 {
		out.Printf("Scan directories: ")
		out.Println("NONE")
		out.Println("  Add directories to config or rerun 'wip config init'")
		allOK = false
	} else {
		for _, dir := range loaded.Directories {
			out.Printf("Directory %s: ", dir)
			abs, err := discovery.NormalizeRoot(dir)
			if err != nil {
				out.Println("MISSING")
				allOK = false
				continue
			}
			info, err := os.Stat(abs)
			switch {
			case err != nil:
				out.Println("MISSING")
				allOK = false
			case !info.IsDir():
				out.Println("NOT A DIRECTORY")
				allOK = false
			default:
				out.Println("OK")
			}
		}
	}

	// Check worklist database
	out.Printf("Worklist database (%s): ", loaded.WorklistPath())
	store, err := worklist.NewStore(loaded.WorklistPath())
	if err != nil {
		out.Println("FAILED")
		out.Printf("  Error: %v\n", err)
		allOK = false
	} else {
		if _, err := store.Items(ctx, true); err != nil {
			out.Println("FAILED")
			out.Printf("  Error: %v\n", err)
			allOK = false
		} else {
			out.Println("OK")
		}
		store.Close()
	}

	// Check LLM provider (only when configured)
	if loaded.LLM.Provider != "" {
		out.Printf("LLM provider (%s): ", loaded.LLM.Provider)
		if _, err := llm.New(loaded.LLM.Provider, loaded.LLM.Model, loaded.LLM.APIKeyEnv); err != nil {
			out.Println("NOT AVAILABLE")
			out.Printf("  Error: %v\n", err)
			allOK = false
		} else {
			out.Println("OK")
		}
	}

	out.Println()
	if allOK {
		out.Success("All checks passed!")
	} else {
		return fmt.Errorf("some checks failed")
	}

	return nil
}
