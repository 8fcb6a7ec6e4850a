package gitx

import (
	"context"
	"time"
)

// Compile-time assertion that MockRepo implements Repo
var _ Repo = (*MockRepo)(nil)

// MockRepo implements Repo for testing. Fields are returned as-is;
// setting an injection error makes the matching method fail.
type MockRepo struct {
	Path        string
	Branch      string
	Detached    bool
	StatusOut   []StatusEntry
	Unstaged    map[string]LineStats
	Staged      map[string]LineStats
	StashList   []string
	UpstreamRef string
	AheadCount  int
	BehindCount int
	LastCommit  time.Time
	BranchHeads []BranchHead
	BranchLog   map[string][]Commit

	// Error injection
	BranchError      error
	StatusError      error
	DiffStatsError   error
	StashError       error
	UpstreamError    error
	AheadBehindError error
	LastCommitError  error
	BranchesError    error
	LogError         error
}

// NewMockRepo creates a mock rooted at path.
func NewMockRepo(path string) *MockRepo {
	return &MockRepo{
		Path:      path,
		Branch:    "main",
		Unstaged:  make(map[string]LineStats),
		Staged:    make(map[string]LineStats),
		BranchLog: make(map[string][]Commit),
	}
}

// Root implements Repo.Root
func (m *MockRepo) Root() string {
	return m.Path
}

// CurrentBranch implements Repo.CurrentBranch
func (m *MockRepo) CurrentBranch(ctx context.Context) (string, bool, error) {
	if m.BranchError != nil {
		return "", false, m.BranchError
	}
	if m.Detached {
		return "", true, nil
	}
	return m.Branch, false, nil
}

// Status implements Repo.Status
func (m *MockRepo) Status(ctx context.Context) ([]StatusEntry, error) {
	if m.StatusError != nil {
		return nil, m.StatusError
	}
	return m.StatusOut, nil
}

// DiffStats implements Repo.DiffStats
func (m *MockRepo) DiffStats(ctx context.Context, staged bool) (map[string]LineStats, error) {
	if m.DiffStatsError != nil {
		return nil, m.DiffStatsError
	}
	if staged {
		return m.Staged, nil
	}
	return m.Unstaged, nil
}

// Stashes implements Repo.Stashes
func (m *MockRepo) Stashes(ctx context.Context) ([]string, error) {
	if m.StashError != nil {
		return nil, m.StashError
	}
	return m.StashList, nil
}

// Upstream implements Repo.Upstream
func (m *MockRepo) Upstream(ctx context.Context) (string, error) {
	if m.UpstreamError != nil {
		return "", m.UpstreamError
	}
	return m.UpstreamRef, nil
}

// AheadBehind implements Repo.AheadBehind
func (m *MockRepo) AheadBehind(ctx context.Context, upstream string) (int, int, error) {
	if m.AheadBehindError != nil {
		return 0, 0, m.AheadBehindError
	}
	return m.AheadCount, m.BehindCount, nil
}

// LastCommitTime implements Repo.LastCommitTime
func (m *MockRepo) LastCommitTime(ctx context.Context) (time.Time, error) {
	if m.LastCommitError != nil {
		return time.Time{}, m.LastCommitError
	}
	return m.LastCommit, nil
}

// Branches implements Repo.Branches
func (m *MockRepo) Branches(ctx context.Context) ([]BranchHead, error) {
	if m.BranchesError != nil {
		return nil, m.BranchesError
	}
	return m.BranchHeads, nil
}

// CommitsSince implements Repo.CommitsSince
func (m *MockRepo) CommitsSince(ctx context.Context, ref string, since time.Time, limit int) ([]Commit, error) {
	if m.LogError != nil {
		return nil, m.LogError
	}
	var commits []Commit
	for _, c := range m.BranchLog[ref] {
		if c.When.Before(since) {
			continue
		}
		commits = append(commits, c)
		if len(commits) == limit {
			break
		}
	}
	return commits, nil
}
