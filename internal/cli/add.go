package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
)

var addRepo string

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Add a work-in-progress item",
	Long: `Add records a note about in-flight work so tomorrow's briefing can
remind you of it.

When run from inside a git repository the item is attached to that repo
automatically; use --repo to attach it to another one.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addRepo, "repo", "r", "", "repository path (default: the enclosing repo, if any)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := GetOutput()

	repoPath := addRepo
	if repoPath == "" {
		if wd, err := os.Getwd(); err == nil {
			repoPath = gitx.FindEnclosingRoot(wd)
		}
	} else {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			return domain.Errorf(domain.ErrInvalidArgs, "resolve --repo %q: %v", repoPath, err)
		}
		repoPath = abs
	}

	store, err := openWorklist()
	if err != nil {
		return err
	}
	defer store.Close()

	item, err := store.Add(ctx, args[0], repoPath)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(item)
	}

	if item.Repo != "" {
		out.Printf("Added #%d: %s (%s)\n", item.ID, item.Description, filepath.Base(item.Repo))
	} else {
		out.Printf("Added #%d: %s\n", item.ID, item.Description)
	}
	return nil
}
