package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charliek/wip/internal/domain"
)

var testConfig = Config{
	Authors:        []string{"claude", "copilot", "bot"},
	BranchPatterns: []string{"agent/", "claude/"},
}

func TestDetectByAuthor(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	branches := []BranchCommits{
		{
			Branch: "main",
			Commits: []Commit{
				{Author: "Claude Agent", When: now.Add(-30 * time.Minute), Files: []string{"a.go", "b.go"}},
				{Author: "Claude Agent", When: now.Add(-2 * time.Hour), Files: []string{"a.go", "c.go"}},
				{Author: "Alice Human", When: now.Add(-1 * time.Hour), Files: []string{"d.go"}},
			},
		},
	}

	sessions := Detect(branches, testConfig, now)
	require.Len(t, sessions, 1)

	s := sessions[0]
	require.Equal(t, "claude", s.Agent)
	require.Equal(t, "main", s.Branch)
	require.Equal(t, 2, s.Commits)
	require.Equal(t, 3, s.FilesChanged, "files are distinct across the session")
	require.Equal(t, now.Add(-2*time.Hour), s.FirstCommitAt)
	require.Equal(t, now.Add(-30*time.Minute), s.LastCommitAt)
	require.Equal(t, "30m ago", s.LastCommitAgo)
	require.Equal(t, domain.FreshnessActive, s.Freshness)
}

func TestDetectByBranchPrefix(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	branches := []BranchCommits{
		{
			Branch: "agent/fix-login",
			Commits: []Commit{
				{Author: "Alice Human", When: now.Add(-3 * time.Hour), Files: []string{"login.go"}},
			},
		},
	}

	sessions := Detect(branches, testConfig, now)
	require.Len(t, sessions, 1)
	require.Equal(t, "agent", sessions[0].Agent, "prefix label drops the separator")
	require.Equal(t, "agent/fix-login", sessions[0].Branch)
}

func TestDetectAuthorWinsOverBranch(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	branches := []BranchCommits{
		{
			Branch: "claude/refactor",
			Commits: []Commit{
				{Author: "Copilot", When: now.Add(-10 * time.Minute)},
				{Author: "Alice Human", When: now.Add(-20 * time.Minute)},
			},
		},
	}

	sessions := Detect(branches, testConfig, now)
	require.Len(t, sessions, 2)

	byAgent := map[string]domain.AgentSession{}
	for _, s := range sessions {
		byAgent[s.Agent] = s
	}
	require.Equal(t, 1, byAgent["copilot"].Commits, "author pattern outranks branch pattern")
	require.Equal(t, 1, byAgent["claude"].Commits, "unmatched author falls back to the branch agent")
}

func TestDetectGroupsPerBranch(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	branches := []BranchCommits{
		{Branch: "main", Commits: []Commit{{Author: "bot", When: now.Add(-5 * time.Hour)}}},
		{Branch: "dev", Commits: []Commit{{Author: "bot", When: now.Add(-1 * time.Hour)}}},
	}

	sessions := Detect(branches, testConfig, now)
	require.Len(t, sessions, 2)
	require.Equal(t, "dev", sessions[0].Branch, "sessions are ordered newest first")
	require.Equal(t, "main", sessions[1].Branch)
}

func TestDetectIgnoresHumanWork(t *testing.T) {
	now := time.Now()
	branches := []BranchCommits{
		{
			Branch: "feature/ui",
			Commits: []Commit{
				{Author: "Alice Human", When: now.Add(-time.Hour)},
				{Author: "Bob Human", When: now.Add(-2 * time.Hour)},
			},
		},
	}

	require.Empty(t, Detect(branches, testConfig, now))
}

func TestDetectEmptyPatterns(t *testing.T) {
	now := time.Now()
	branches := []BranchCommits{
		{Branch: "claude/x", Commits: []Commit{{Author: "claude", When: now}}},
	}

	require.Empty(t, Detect(branches, Config{}, now))
	require.Empty(t, Detect(branches, Config{Authors: []string{""}, BranchPatterns: []string{" "}}, now))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected domain.Freshness
	}{
		{name: "just under an hour", age: 59 * time.Minute, expected: domain.FreshnessActive},
		{name: "exactly an hour", age: time.Hour, expected: domain.FreshnessRecent},
		{name: "just over an hour", age: 61 * time.Minute, expected: domain.FreshnessRecent},
		{name: "just under a day", age: 23 * time.Hour, expected: domain.FreshnessRecent},
		{name: "just over a day", age: 25 * time.Hour, expected: domain.FreshnessStale},
		{name: "weeks old", age: 14 * 24 * time.Hour, expected: domain.FreshnessStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Classify(tt.age))
		})
	}
}
