//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/discovery"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/scan"
	"github.com/charliek/wip/test/integration/harness"
)

// requireGit skips the test when no git binary is installed.
func requireGit(t *testing.T) *gitx.Runner {
	t.Helper()

	if !harness.HasGit() {
		t.Skip("git not installed")
	}
	runner, err := gitx.NewRunner()
	require.NoError(t, err)
	return runner
}

// defaultOptions mirrors a fresh config: default agent patterns, the
// harness identity as the briefing author.
func defaultOptions() scan.Options {
	return scan.Options{
		Author:              harness.DefaultAuthor,
		RecentDays:          constants.DefaultRecentDays,
		AgentAuthors:        constants.DefaultAgentAuthors,
		AgentBranchPatterns: constants.DefaultAgentBranchPatterns,
		Jobs:                2,
		Timeout:             constants.RepoScanTimeout,
	}
}

// scanOne runs a full scan over a single repository path.
func scanOne(t *testing.T, runner *gitx.Runner, opts scan.Options, path string) domain.RepoStatus {
	t.Helper()

	orch := scan.NewOrchestrator(runner, opts)
	results := orch.ScanAll(context.Background(), []string{path})
	require.Len(t, results, 1)
	return results[0]
}

func TestScanCleanRepo(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("main.go", "package main\n")
	repo.Commit("Initial commit")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	assert.Equal(t, repo.Path, st.Path)
	assert.Equal(t, filepath.Base(repo.Path), st.Name)
	assert.Equal(t, "main", st.Branch)
	assert.False(t, st.IsDetached)
	assert.False(t, st.IsDirty())
	assert.Zero(t, st.StashCount)
	assert.NotEmpty(t, st.LastCommitAgo)
	assert.Empty(t, st.Degraded)
}

func TestScanDirtyWorktree(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	repo.WriteFile("a.txt", "one\ntwo\n") // unstaged modification
	repo.WriteFile("b.txt", "x\ny\n")     // untracked
	repo.WriteFile("c.txt", "staged\n")   // staged addition
	repo.Git("add", "c.txt")

	opts := defaultOptions()
	opts.UntrackedStats = true
	st := scanOne(t, runner, opts, repo.Path)

	assert.True(t, st.IsDirty())
	assert.Equal(t, 1, st.DirtyFiles)
	assert.Equal(t, 1, st.StagedFiles)
	assert.Equal(t, 1, st.UntrackedFiles)
	assert.Equal(t, 3, st.DirtyTotal())

	byPath := make(map[string]domain.FileChange)
	for _, ch := range st.ChangedFiles {
		byPath[ch.Path] = ch
	}
	require.Len(t, byPath, 3)

	assert.Equal(t, domain.StageUnstaged, byPath["a.txt"].Stage)
	assert.Equal(t, domain.ChangeModified, byPath["a.txt"].Kind)
	assert.Equal(t, 1, byPath["a.txt"].Insertions)

	assert.Equal(t, domain.StageUntracked, byPath["b.txt"].Stage)
	assert.Equal(t, domain.ChangeUntracked, byPath["b.txt"].Kind)
	assert.Equal(t, 2, byPath["b.txt"].Insertions)

	assert.Equal(t, domain.StageStaged, byPath["c.txt"].Stage)
	assert.Equal(t, domain.ChangeAdded, byPath["c.txt"].Kind)
}

func TestScanStash(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	repo.WriteFile("a.txt", "one\ntwo\n")
	repo.Stash("half-finished parser")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	assert.Equal(t, 1, st.StashCount)
	require.Len(t, st.StashEntries, 1)
	assert.Contains(t, st.StashEntries[0], "half-finished parser")
	// Stashing restores a clean tree
	assert.False(t, st.IsDirty())
}

func TestScanAheadBehind(t *testing.T) {
	runner := requireGit(t)

	repo, bare := harness.NewRepoWithOrigin(t)

	// One local commit origin has not seen
	repo.WriteFile("local.txt", "local\n")
	repo.Commit("Local work")

	// One commit on origin this clone has not merged
	other := repo.Clone(bare)
	other.WriteFile("remote.txt", "remote\n")
	other.Commit("Remote work")
	other.Git("push", "origin", "main")
	repo.Git("fetch", "origin")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	assert.Equal(t, "origin/main", st.Upstream)
	assert.Equal(t, 1, st.Ahead)
	assert.Equal(t, 1, st.Behind)
}

func TestScanNoUpstream(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	// No remote at all: not degraded, just no upstream to compare with
	assert.Empty(t, st.Upstream)
	assert.Zero(t, st.Ahead)
	assert.Zero(t, st.Behind)
	assert.Empty(t, st.Degraded)
}

func TestScanAgentSession(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("main.go", "package main\n")
	// Push the human commit outside the lookback window so the session
	// counts only the agent's work
	repo.CommitAt("Initial commit", harness.DefaultAuthor, time.Now().Add(-20*24*time.Hour))

	repo.Branch("claude/add-parser")
	repo.WriteFile("parser.go", "package main\n\nfunc parse() {}\n")
	repo.CommitAs("Add parser skeleton", "Claude")
	repo.WriteFile("parser_test.go", "package main\n")
	repo.CommitAs("Add parser test", "Claude")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	require.Len(t, st.AgentSessions, 1)
	session := st.AgentSessions[0]
	assert.Equal(t, "claude", session.Agent)
	assert.Equal(t, "claude/add-parser", session.Branch)
	assert.Equal(t, 2, session.Commits)
	assert.Equal(t, 2, session.FilesChanged)
	assert.Equal(t, domain.FreshnessActive, session.Freshness)
}

func TestScanAgentBranchWithoutAgentAuthor(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("main.go", "package main\n")
	repo.Commit("Initial commit")

	// Branch pattern matches even when the author looks human
	repo.Branch("agent/retry-loop")
	repo.WriteFile("retry.go", "package main\n")
	repo.Commit("Add retry loop")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	require.Len(t, st.AgentSessions, 1)
	assert.Equal(t, "agent", st.AgentSessions[0].Agent)
	assert.Equal(t, "agent/retry-loop", st.AgentSessions[0].Branch)
}

func TestScanRecentCommits(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("old.txt", "old\n")
	repo.CommitAt("Old work", harness.DefaultAuthor, time.Now().Add(-48*time.Hour))
	repo.WriteFile("new.txt", "new\n")
	repo.Commit("Fresh work")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	require.Len(t, st.RecentCommits, 1)
	commit := st.RecentCommits[0]
	assert.Equal(t, "Fresh work", commit.Subject)
	assert.Contains(t, commit.Files, "new.txt")
	assert.NotEmpty(t, commit.ShortHash)
}

func TestScanRecentCommitsOtherAuthor(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	opts := defaultOptions()
	opts.Author = "Somebody Else"
	st := scanOne(t, runner, opts, repo.Path)

	assert.Empty(t, st.RecentCommits)
}

func TestScanRecentBranches(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	repo.Branch("feature/colors")
	repo.WriteFile("colors.txt", "red\n")
	repo.Commit("Add colors")
	repo.Checkout("main")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	require.Len(t, st.RecentBranches, 1)
	assert.Equal(t, "feature/colors", st.RecentBranches[0].Name)
	assert.NotEmpty(t, st.RecentBranches[0].LastCommitAgo)
}

func TestScanDetachedHead(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")
	repo.Git("checkout", "--detach")

	st := scanOne(t, runner, defaultOptions(), repo.Path)

	assert.True(t, st.IsDetached)
	assert.Equal(t, domain.DetachedBranch, st.Branch)
}

func TestScanSkipsNonRepos(t *testing.T) {
	runner := requireGit(t)

	repo := harness.NewRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	plainDir := t.TempDir()

	orch := scan.NewOrchestrator(runner, defaultOptions())
	results := orch.ScanAll(context.Background(), []string{plainDir, repo.Path})

	// The non-repo path is dropped; the real repo still scans
	require.Len(t, results, 1)
	assert.Equal(t, repo.Path, results[0].Path)
}

func TestDiscoveryFindsNestedRepos(t *testing.T) {
	requireGit(t)

	root := t.TempDir()

	harness.NewRepoAt(t, filepath.Join(root, "alpha"))
	harness.NewRepoAt(t, filepath.Join(root, "team", "tools", "beta"))
	harness.NewRepoAt(t, filepath.Join(root, "node_modules", "dep"))
	harness.NewRepoAt(t, filepath.Join(root, ".hidden", "secret"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "nothing"), 0755))

	repos := discovery.Discover([]string{root}, 3)

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, filepath.Base(r))
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestDiscoveryDepthLimit(t *testing.T) {
	requireGit(t)

	root := t.TempDir()
	harness.NewRepoAt(t, filepath.Join(root, "a", "b", "c", "d", "deep"))

	assert.Empty(t, discovery.Discover([]string{root}, 3))
	assert.Len(t, discovery.Discover([]string{root}, 5), 1)
}

func TestScanFullBriefingFlow(t *testing.T) {
	runner := requireGit(t)

	root := t.TempDir()

	clean := harness.NewRepoAt(t, filepath.Join(root, "clean"))
	clean.WriteFile("README.md", "# clean\n")
	clean.Commit("Initial commit")

	dirty := harness.NewRepoAt(t, filepath.Join(root, "dirty"))
	dirty.WriteFile("main.go", "package main\n")
	dirty.Commit("Initial commit")
	dirty.WriteFile("main.go", "package main\n\nfunc main() {}\n")

	repos := discovery.Discover([]string{root}, 3)
	require.Len(t, repos, 2)

	orch := scan.NewOrchestrator(runner, defaultOptions())
	results := orch.ScanAll(context.Background(), repos)
	require.Len(t, results, 2)

	// Discovery sorts paths, so results arrive in that order too
	assert.Equal(t, "clean", results[0].Name)
	assert.False(t, results[0].IsDirty())
	assert.Equal(t, "dirty", results[1].Name)
	assert.True(t, results[1].IsDirty())
}
