package gitx

import (
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/charliek/wip/internal/logging"
)

// DetectAuthor returns the globally configured git user.name, or ""
// when none is set.
func DetectAuthor() string {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		logging.Logger.Debug("loading global git config failed", "error", err)
		return ""
	}
	return cfg.User.Name
}

// FindEnclosingRoot walks upward from dir to the nearest git working
// tree root. It returns "" when dir is not inside a working tree.
func FindEnclosingRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no working tree to attach items to
		return ""
	}
	return wt.Filesystem.Root()
}
