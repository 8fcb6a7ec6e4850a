// Package agents attributes recent commits to coding agents and groups
// them into per-branch sessions.
package agents

import (
	"sort"
	"strings"
	"time"

	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/timeago"
)

// Freshness thresholds, measured from the newest commit of a session.
const (
	activeWindow = time.Hour
	recentWindow = 24 * time.Hour
)

// Config holds the pattern sets used for attribution. Authors match as
// case-insensitive substrings of the commit author name; branch
// patterns match as case-insensitive branch name prefixes.
type Config struct {
	Authors        []string
	BranchPatterns []string
}

// Commit is the slice of commit data detection needs.
type Commit struct {
	Author string
	When   time.Time
	Files  []string
}

// BranchCommits pairs a branch with its commits inside the detection
// window.
type BranchCommits struct {
	Branch  string
	Commits []Commit
}

// Detect groups agent-attributed commits into sessions, one per
// (agent, branch) pair, ordered newest first. A commit matching an
// author pattern is attributed to that pattern; otherwise a commit on a
// branch matching a branch pattern is attributed to the branch's agent.
// Author matches always win so that a human commit on an agent branch
// stays the agent's only by branch, and an agent commit on a human
// branch is still found.
func Detect(branches []BranchCommits, cfg Config, now time.Time) []domain.AgentSession {
	type key struct {
		agent  string
		branch string
	}
	type group struct {
		commits int
		files   map[string]struct{}
		first   time.Time
		last    time.Time
	}

	groups := make(map[key]*group)
	var order []key

	for _, bc := range branches {
		branchLabel := matchPrefix(bc.Branch, cfg.BranchPatterns)
		for _, c := range bc.Commits {
			label := matchAuthor(c.Author, cfg.Authors)
			if label == "" {
				label = branchLabel
			}
			if label == "" {
				continue
			}

			k := key{agent: label, branch: bc.Branch}
			g, ok := groups[k]
			if !ok {
				g = &group{files: make(map[string]struct{})}
				groups[k] = g
				order = append(order, k)
			}
			g.commits++
			for _, f := range c.Files {
				g.files[f] = struct{}{}
			}
			if g.first.IsZero() || c.When.Before(g.first) {
				g.first = c.When
			}
			if c.When.After(g.last) {
				g.last = c.When
			}
		}
	}

	sessions := make([]domain.AgentSession, 0, len(order))
	for _, k := range order {
		g := groups[k]
		sessions = append(sessions, domain.AgentSession{
			Agent:          k.agent,
			Branch:         k.branch,
			Commits:        g.commits,
			FilesChanged:   len(g.files),
			FirstCommitAt:  g.first,
			LastCommitAt:   g.last,
			FirstCommitAgo: timeago.Format(now, g.first),
			LastCommitAgo:  timeago.Format(now, g.last),
			Freshness:      Classify(now.Sub(g.last)),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastCommitAt.After(sessions[j].LastCommitAt)
	})
	return sessions
}

// Classify maps the age of a session's newest commit to a freshness
// status.
func Classify(age time.Duration) domain.Freshness {
	switch {
	case age < activeWindow:
		return domain.FreshnessActive
	case age < recentWindow:
		return domain.FreshnessRecent
	default:
		return domain.FreshnessStale
	}
}

// matchAuthor returns the normalized label of the first author pattern
// contained in author, or "".
func matchAuthor(author string, patterns []string) string {
	lowered := strings.ToLower(author)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(lowered, p) {
			return p
		}
	}
	return ""
}

// matchPrefix returns the normalized label of the first branch pattern
// that prefixes branch, or "". Trailing separators are stripped from
// the label so "claude/" labels sessions as "claude".
func matchPrefix(branch string, patterns []string) string {
	lowered := strings.ToLower(branch)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(lowered, p) {
			return strings.TrimRight(p, "/-_")
		}
	}
	return ""
}
