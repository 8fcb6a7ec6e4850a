package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charliek/wip/internal/domain"
)

func fixtureRepos() []domain.RepoStatus {
	return []domain.RepoStatus{
		{
			Path:           "/home/dev/projects/api",
			Name:           "api",
			Branch:         "main",
			DirtyFiles:     2,
			UntrackedFiles: 1,
			StashCount:     1,
			StashEntries:   []string{"stash@{0}: WIP on main: 1a2b3c4 spike"},
			Upstream:       "origin/main",
			Ahead:          2,
			Behind:         1,
			LastCommitAgo:  "3h ago",
			ChangedFiles: []domain.FileChange{
				{Path: "handler.go", Kind: domain.ChangeModified, Stage: domain.StageUnstaged, Insertions: 12, Deletions: 4},
				{Path: "notes.md", Kind: domain.ChangeUntracked, Stage: domain.StageUntracked},
			},
			RecentBranches: []domain.BranchInfo{
				{Name: "claude/fix-auth", LastCommitAgo: "30m ago"},
				{Name: "feature/ui", LastCommitAgo: "2d ago"},
			},
			RecentCommits: []domain.CommitInfo{
				{
					ShortHash: "aaaa111", Subject: "Wire up scanning", Ago: "3h ago",
					Body:  "first\nsecond\nthird\nfourth",
					Files: []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go", "g.go", "h.go", "i.go", "j.go", "k.go", "l.go"},
				},
			},
			AgentSessions: []domain.AgentSession{
				{
					Agent: "claude", Branch: "claude/fix-auth", Commits: 3,
					FilesChanged: 5, LastCommitAgo: "30m ago", Freshness: domain.FreshnessActive,
				},
			},
		},
		{
			Path:   "/home/dev/projects/tools",
			Name:   "tools",
			Branch: "main",
		},
	}
}

func fixtureItems() []domain.Item {
	done := time.Now()
	return []domain.Item{
		{ID: 1, Description: "finish auth refactor", Status: domain.ItemOpen, Repo: "/home/dev/projects/api"},
		{ID: 2, Description: "review dashboards", Status: domain.ItemDone, CompletedAt: &done},
	}
}

func TestBuildContext(t *testing.T) {
	ctx := BuildContext(fixtureRepos(), fixtureItems())

	require.Contains(t, ctx, "## Work-in-progress items")
	require.Contains(t, ctx, "- [OPEN] #1: finish auth refactor (repo: /home/dev/projects/api)")
	require.Contains(t, ctx, "- [DONE] #2: review dashboards")

	require.Contains(t, ctx, "## Repositories")
	require.Contains(t, ctx, "### api (branch: main)")
	require.Contains(t, ctx, "Status: 3 uncommitted changes, 1 stash(es), last commit 3h ago")
	require.Contains(t, ctx, "  - [unstaged] handler.go (modified) (+12/-4)")
	require.Contains(t, ctx, "  - [untracked] notes.md (untracked)\n", "no stat suffix for zero counts")
	require.Contains(t, ctx, "Stashes:\n  - stash@{0}: WIP on main: 1a2b3c4 spike")
	require.Contains(t, ctx, "Remote: 2 ahead, 1 behind")
	require.Contains(t, ctx, "Other branches: claude/fix-auth (30m ago), feature/ui (2d ago)")
	require.Contains(t, ctx, "  - aaaa111 Wire up scanning (3h ago)")
	require.Contains(t, ctx, "      first\n      second\n      third\n")
	require.NotContains(t, ctx, "fourth", "commit body is capped at three lines")
	require.Contains(t, ctx, "+2 more", "commit files are capped at ten")
	require.Contains(t, ctx, "  - claude on claude/fix-auth: 3 commits, 5 files changed, last commit 30m ago (active)")

	require.Contains(t, ctx, "### tools (branch: main)\nStatus: clean")
}

func TestBuildContextEmpty(t *testing.T) {
	require.Empty(t, BuildContext(nil, nil))

	onlyRepos := BuildContext(fixtureRepos(), nil)
	require.NotContains(t, onlyRepos, "## Work-in-progress items")
	require.Contains(t, onlyRepos, "## Repositories")
}

func TestBuildBriefingPrompt(t *testing.T) {
	system, user := BuildBriefingPrompt(fixtureRepos(), fixtureItems())

	require.Contains(t, system, "You are wip")
	require.Contains(t, user, "Give me a briefing")
	require.Contains(t, user, "### api (branch: main)")
}

func TestBuildStandupPrompt(t *testing.T) {
	_, user := BuildStandupPrompt(fixtureRepos(), nil)

	require.Contains(t, user, "draft a standup update")
	require.Contains(t, user, "- Yesterday:")
	require.Contains(t, user, "- Blockers:")
}

func TestBuildQueryPrompt(t *testing.T) {
	_, user := BuildQueryPrompt("what is stale?", fixtureRepos(), nil)

	require.True(t, strings.HasSuffix(strings.TrimSpace(user), "My question: what is stale?"))
	require.Contains(t, user, "### api (branch: main)")
}
