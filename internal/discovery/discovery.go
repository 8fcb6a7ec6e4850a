// Package discovery finds git repositories under configured root
// directories.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charliek/wip/internal/logging"
)

// skipDirs are directory names that never contain repositories worth
// scanning. Hidden directories are skipped as well.
var skipDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// Discover walks each root at most depth levels deep and returns the
// sorted, deduplicated absolute paths of git working trees. A directory
// containing a .git entry (directory or file, so linked worktrees and
// submodules count) is recorded and not descended into, so nested
// repositories below the first hit are not reported. Roots that do not
// exist or are not directories are skipped.
func Discover(roots []string, depth int) []string {
	seen := make(map[string]struct{})
	var repos []string

	for _, root := range roots {
		abs, err := NormalizeRoot(root)
		if err != nil {
			logging.Logger.Debug("skipping scan root", "root", root, "error", err)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			logging.Logger.Debug("skipping scan root", "root", root)
			continue
		}
		walk(abs, depth, &repos, seen)
	}

	sort.Strings(repos)
	return repos
}

// walk descends from dir with remaining levels of budget. The root
// itself is depth 0, so a repository sitting exactly depth levels down
// is still found.
func walk(dir string, remaining int, repos *[]string, seen map[string]struct{}) {
	if remaining < 0 {
		return
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			*repos = append(*repos, dir)
		}
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Logger.Debug("skipping unreadable directory", "path", dir, "error", err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || skipDirs[name] {
			continue
		}
		child := filepath.Join(dir, name)
		if !entry.IsDir() {
			// Follow directory symlinks; everything else is not walkable
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(child)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		walk(child, remaining-1, repos, seen)
	}
}

// NormalizeRoot expands a leading ~ and resolves the path to an
// absolute, symlink-free form so duplicate roots collapse.
func NormalizeRoot(root string) (string, error) {
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
