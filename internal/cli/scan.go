package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/config"
	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/discovery"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/logging"
	"github.com/charliek/wip/internal/scan"
	"github.com/charliek/wip/internal/worklist"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan repositories and show the briefing",
	Long: `Scan walks the configured directories for git repositories and prints
a status briefing: dirty files, stashes, ahead/behind counts, recent
branches, commits from the last day, and detected agent sessions.

This is the same briefing the bare wip command shows.`,
	RunE: runBriefing,
}

func init() {
	scanCmd.Flags().BoolVar(&untrackedStats, "untracked-stats", false, "count lines in untracked files")
}

func runBriefing(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := GetOutput()

	repos, err := scanRepos(ctx)
	if err != nil {
		return err
	}

	items, repoItems := loadWorkItems(ctx, repos)

	if out.IsJSON() {
		if repos == nil {
			repos = []domain.RepoStatus{}
		}
		if items == nil {
			items = []domain.Item{}
		}
		return out.JSON(domain.ScanReport{Repos: repos, WorkItems: items})
	}

	if len(repos) == 0 {
		out.Println("No git repos found in configured directories.")
		return nil
	}

	out.Briefing(repos, items, repoItems)
	return nil
}

// scanRepos discovers repositories under the configured roots and runs
// the full status scan. Repositories that cannot be opened at all are
// omitted; per-facet failures degrade inside each RepoStatus.
func scanRepos(ctx context.Context) ([]domain.RepoStatus, error) {
	if len(cfg.Directories) == 0 {
		return nil, domain.Errorf(domain.ErrNoDirectories, "run `wip config init` to get started")
	}

	runner, err := gitx.NewRunner()
	if err != nil {
		return nil, err
	}

	paths := discovery.Discover(cfg.Directories, cfg.ScanDepth)
	logging.Logger.Debug("discovery complete", "roots", len(cfg.Directories), "repos", len(paths))

	orch := scan.NewOrchestrator(runner, scanOptions())
	return orch.ScanAll(ctx, paths), nil
}

// scanOptions resolves the effective scan settings from config and flags.
func scanOptions() scan.Options {
	return scan.Options{
		Author:              cfg.Author,
		RecentDays:          cfg.RecentDays,
		AgentAuthors:        cfg.Agents.Authors,
		AgentBranchPatterns: cfg.Agents.BranchPatterns,
		UntrackedStats:      untrackedStats || cfg.UntrackedStats,
		Jobs:                cfg.Jobs,
		Timeout:             constants.RepoScanTimeout,
	}
}

// loadWorkItems fetches open items and groups the repo-linked ones by
// scanned repository path. A broken worklist store degrades to an empty
// list; the briefing is about the scan.
func loadWorkItems(ctx context.Context, repos []domain.RepoStatus) ([]domain.Item, map[string][]domain.Item) {
	store, err := openWorklist()
	if err != nil {
		logging.Logger.Warn("worklist unavailable", "error", err)
		return nil, nil
	}
	defer store.Close()

	items, err := store.Items(ctx, false)
	if err != nil {
		logging.Logger.Warn("worklist unavailable", "error", err)
		return nil, nil
	}

	repoItems := make(map[string][]domain.Item)
	for _, repo := range repos {
		linked, err := store.ItemsForRepo(ctx, repo.Path)
		if err == nil && len(linked) > 0 {
			repoItems[repo.Path] = linked
		}
	}

	return items, repoItems
}

// openWorklist opens the item store. Worklist commands work without a
// config file, but a loaded config can still point db_path elsewhere.
func openWorklist() (*worklist.Store, error) {
	path := constants.DefaultWorklistPath()
	if cfg != nil {
		path = cfg.WorklistPath()
	} else if loaded, err := config.Load(cfgFile); err == nil {
		path = loaded.WorklistPath()
	}
	return worklist.NewStore(path)
}
