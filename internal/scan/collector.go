// Package scan turns repositories into RepoStatus snapshots.
//
// Collection is facet-by-facet: a failing facet is recorded in
// RepoStatus.Degraded and everything else is still reported, so one
// broken repository never costs the rest of the briefing.
package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/charliek/wip/internal/agents"
	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/logging"
	"github.com/charliek/wip/internal/timeago"
)

// Degraded facet names
const (
	FacetBranch         = "branch"
	FacetWorktree       = "worktree"
	FacetDiffStats      = "diff_stats"
	FacetStash          = "stash"
	FacetAheadBehind    = "ahead_behind"
	FacetLastCommit     = "last_commit"
	FacetRecentBranches = "recent_branches"
	FacetRecentCommits  = "recent_commits"
	FacetAgentSessions  = "agent_sessions"
)

// Options carries the resolved scan settings.
type Options struct {
	// Author filters recent commits; empty matches nothing
	Author string
	// RecentDays is the lookback window for branches and agent activity
	RecentDays int
	// AgentAuthors and AgentBranchPatterns drive agent attribution
	AgentAuthors        []string
	AgentBranchPatterns []string
	// UntrackedStats enables line counting for untracked files
	UntrackedStats bool
	// Jobs caps concurrent repository scans
	Jobs int
	// Timeout bounds the git work per repository
	Timeout time.Duration
}

// Collector produces a RepoStatus snapshot for a single repository.
type Collector struct {
	opts Options
	now  func() time.Time
}

// NewCollector creates a Collector, applying defaults for unset options.
func NewCollector(opts Options) *Collector {
	if opts.RecentDays <= 0 {
		opts.RecentDays = constants.DefaultRecentDays
	}
	return &Collector{opts: opts, now: time.Now}
}

// Collect gathers every facet of repo. It never fails; facets that
// cannot be read are listed in the result's Degraded field.
func (c *Collector) Collect(ctx context.Context, repo gitx.Repo) domain.RepoStatus {
	now := c.now()
	st := domain.RepoStatus{
		Path: repo.Root(),
		Name: filepath.Base(repo.Root()),
	}

	degrade := func(facet string, err error) {
		st.Degraded = append(st.Degraded, facet)
		logging.Logger.Debug("facet unavailable",
			"repo", st.Name, "facet", facet, "error", err)
	}

	branch, detached, err := repo.CurrentBranch(ctx)
	switch {
	case err != nil:
		degrade(FacetBranch, err)
	case detached:
		st.Branch = domain.DetachedBranch
		st.IsDetached = true
	default:
		st.Branch = branch
	}

	c.collectWorktree(ctx, repo, &st, degrade)

	if stashes, err := repo.Stashes(ctx); err != nil {
		degrade(FacetStash, err)
	} else {
		st.StashCount = len(stashes)
		st.StashEntries = stashes
	}

	c.collectUpstream(ctx, repo, &st, degrade)

	if when, err := repo.LastCommitTime(ctx); err != nil {
		degrade(FacetLastCommit, err)
	} else if !when.IsZero() {
		st.LastCommitAgo = timeago.Format(now, when)
	}

	heads, err := repo.Branches(ctx)
	if err != nil {
		// Branch tips feed both recent branches and agent detection
		degrade(FacetRecentBranches, err)
		degrade(FacetAgentSessions, err)
		heads = nil
	}

	cutoff := now.Add(-time.Duration(c.opts.RecentDays) * 24 * time.Hour)
	if heads != nil {
		st.RecentBranches = c.recentBranches(heads, branch, cutoff, now)
		st.AgentSessions = c.agentSessions(ctx, repo, heads, cutoff, now)
	}

	c.collectRecentCommits(ctx, repo, &st, now, degrade)

	return st
}

// collectWorktree fills the change list and the dirty, staged and
// untracked counts from the porcelain status.
func (c *Collector) collectWorktree(ctx context.Context, repo gitx.Repo, st *domain.RepoStatus, degrade func(string, error)) {
	entries, err := repo.Status(ctx)
	if err != nil {
		degrade(FacetWorktree, err)
		return
	}
	if len(entries) == 0 {
		return
	}

	unstagedStats, uErr := repo.DiffStats(ctx, false)
	stagedStats, sErr := repo.DiffStats(ctx, true)
	if uErr != nil || sErr != nil {
		// Entries still count; only the line numbers are missing
		err := uErr
		if err == nil {
			err = sErr
		}
		degrade(FacetDiffStats, err)
	}

	for _, e := range entries {
		if e.Staged == '?' {
			change := domain.FileChange{
				Path:  e.Path,
				Kind:  domain.ChangeUntracked,
				Stage: domain.StageUntracked,
			}
			if c.opts.UntrackedStats {
				if lines, ok := countFileLines(repo.Root(), e.Path); ok {
					change.Insertions = lines
				}
			}
			st.UntrackedFiles++
			st.ChangedFiles = append(st.ChangedFiles, change)
			continue
		}
		if e.Staged != ' ' {
			ls := stagedStats[e.Path]
			st.StagedFiles++
			st.ChangedFiles = append(st.ChangedFiles, domain.FileChange{
				Path:       e.Path,
				Kind:       changeKind(e.Staged),
				Stage:      domain.StageStaged,
				Insertions: ls.Insertions,
				Deletions:  ls.Deletions,
			})
		}
		if e.Worktree != ' ' {
			ls := unstagedStats[e.Path]
			st.DirtyFiles++
			st.ChangedFiles = append(st.ChangedFiles, domain.FileChange{
				Path:       e.Path,
				Kind:       changeKind(e.Worktree),
				Stage:      domain.StageUnstaged,
				Insertions: ls.Insertions,
				Deletions:  ls.Deletions,
			})
		}
	}
}

// collectUpstream resolves the tracking ref and the ahead/behind counts.
// A branch without an upstream keeps zero counts and is not degraded.
func (c *Collector) collectUpstream(ctx context.Context, repo gitx.Repo, st *domain.RepoStatus, degrade func(string, error)) {
	upstream, err := repo.Upstream(ctx)
	if err != nil {
		degrade(FacetAheadBehind, err)
		return
	}
	if upstream == "" {
		return
	}
	st.Upstream = upstream

	ahead, behind, err := repo.AheadBehind(ctx, upstream)
	if err != nil {
		degrade(FacetAheadBehind, err)
		return
	}
	st.Ahead = ahead
	st.Behind = behind
}

// recentBranches filters branch tips to the lookback window, excluding
// the checked-out branch. Input order (newest first) is preserved and
// the cutoff is inclusive.
func (c *Collector) recentBranches(heads []gitx.BranchHead, current string, cutoff, now time.Time) []domain.BranchInfo {
	var recent []domain.BranchInfo
	for _, h := range heads {
		if h.Name == current && current != "" {
			continue
		}
		if h.CommittedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, domain.BranchInfo{
			Name:          h.Name,
			LastCommitAgo: timeago.Format(now, h.CommittedAt),
			LastCommitAt:  h.CommittedAt,
		})
	}
	return recent
}

// agentSessions walks every branch with activity inside the window and
// hands the commits to agent detection. A branch whose log cannot be
// read is left out rather than failing the facet.
func (c *Collector) agentSessions(ctx context.Context, repo gitx.Repo, heads []gitx.BranchHead, cutoff, now time.Time) []domain.AgentSession {
	if len(c.opts.AgentAuthors) == 0 && len(c.opts.AgentBranchPatterns) == 0 {
		return nil
	}

	var histories []agents.BranchCommits
	for _, h := range heads {
		if h.CommittedAt.Before(cutoff) {
			continue
		}
		commits, err := repo.CommitsSince(ctx, h.Name, cutoff, constants.AgentCommitWalkLimit)
		if err != nil {
			logging.Logger.Debug("skipping branch for agent detection",
				"repo", filepath.Base(repo.Root()), "branch", h.Name, "error", err)
			continue
		}
		if len(commits) == 0 {
			continue
		}
		history := agents.BranchCommits{Branch: h.Name}
		for _, cm := range commits {
			history.Commits = append(history.Commits, agents.Commit{
				Author: cm.Author,
				When:   cm.When,
				Files:  cm.Files,
			})
		}
		histories = append(histories, history)
	}

	return agents.Detect(histories, agents.Config{
		Authors:        c.opts.AgentAuthors,
		BranchPatterns: c.opts.AgentBranchPatterns,
	}, now)
}

// collectRecentCommits lists the configured author's commits from the
// last day. An empty author matches nothing and skips the walk.
func (c *Collector) collectRecentCommits(ctx context.Context, repo gitx.Repo, st *domain.RepoStatus, now time.Time, degrade func(string, error)) {
	author := strings.TrimSpace(c.opts.Author)
	if author == "" {
		return
	}

	since := now.Add(-constants.RecentCommitWindow)
	commits, err := repo.CommitsSince(ctx, "HEAD", since, constants.RecentCommitWalkLimit)
	if err != nil {
		degrade(FacetRecentCommits, err)
		return
	}

	needle := strings.ToLower(author)
	for _, cm := range commits {
		if !strings.Contains(strings.ToLower(cm.Author), needle) {
			continue
		}
		st.RecentCommits = append(st.RecentCommits, domain.CommitInfo{
			ShortHash: cm.ShortHash,
			Subject:   cm.Subject,
			Ago:       timeago.Format(now, cm.When),
			Timestamp: cm.When,
			Body:      truncateLines(cm.Body, constants.CommitBodyMaxLines),
			Files:     truncateList(cm.Files, constants.CommitFilesMax),
		})
	}
}

// changeKind maps a porcelain status letter to a change kind.
func changeKind(letter byte) string {
	switch letter {
	case 'M', 'T':
		return domain.ChangeModified
	case 'A':
		return domain.ChangeAdded
	case 'D':
		return domain.ChangeDeleted
	case 'R':
		return domain.ChangeRenamed
	case 'C':
		return domain.ChangeCopied
	case 'U':
		return domain.ChangeConflicted
	case '?':
		return domain.ChangeUntracked
	default:
		return domain.ChangeModified
	}
}

// countFileLines counts lines in an untracked file. Paths are resolved
// inside root so a hostile rename cannot read outside the repository.
// Large and binary files report no count.
func countFileLines(root, rel string) (int, bool) {
	full, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return 0, false
	}
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() || info.Size() > constants.MaxUntrackedScanSize {
		return 0, false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return 0, false
	}
	if len(data) == 0 {
		return 0, true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return 0, false
	}
	lines := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		lines++
	}
	return lines, true
}

// truncateLines keeps the first max lines of text.
func truncateLines(text string, max int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n")
}

// truncateList keeps the first max entries.
func truncateList(list []string, max int) []string {
	if len(list) <= max {
		return list
	}
	return list[:max]
}
