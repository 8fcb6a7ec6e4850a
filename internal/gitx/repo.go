package gitx

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
)

// Repo is the read-only view of a single repository that scanning needs.
// Every method may fail independently; callers degrade per facet rather
// than abandoning the repository.
type Repo interface {
	// Root returns the absolute working tree path
	Root() string

	// CurrentBranch returns the checked-out branch name, or detached=true
	// when HEAD does not point at a branch
	CurrentBranch(ctx context.Context) (branch string, detached bool, err error)

	// Status returns the parsed porcelain status of the working tree
	Status(ctx context.Context) ([]StatusEntry, error)

	// DiffStats returns per-path line counts for unstaged changes, or for
	// staged changes when staged is true
	DiffStats(ctx context.Context, staged bool) (map[string]LineStats, error)

	// Stashes returns the raw stash list entries
	Stashes(ctx context.Context) ([]string, error)

	// Upstream returns the tracking ref of the current branch, or "" when
	// none is configured
	Upstream(ctx context.Context) (string, error)

	// AheadBehind counts commits unique to HEAD and to upstream
	AheadBehind(ctx context.Context, upstream string) (ahead, behind int, err error)

	// LastCommitTime returns the commit time of HEAD, or the zero time
	// when the repository has no commits
	LastCommitTime(ctx context.Context) (time.Time, error)

	// Branches returns local branch tips sorted newest first
	Branches(ctx context.Context) ([]BranchHead, error)

	// CommitsSince walks ref newest first, returning commits no older
	// than since, with changed file lists, up to limit commits
	CommitsSince(ctx context.Context, ref string, since time.Time, limit int) ([]Commit, error)
}

// Compile-time assertion that ExecRepo implements Repo
var _ Repo = (*ExecRepo)(nil)

// ExecRepo reads repository state through the git binary.
type ExecRepo struct {
	runner *Runner
	root   string
}

// Open validates that path is a git repository and returns a handle to
// it. A path without a repository returns ErrNotARepo.
func Open(path string, runner *Runner) (*ExecRepo, error) {
	if _, err := git.PlainOpen(path); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.Errorf(domain.ErrNotARepo, "%s", path)
		}
		return nil, domain.Errorf(domain.ErrGitError, "open %s: %v", path, err)
	}
	return &ExecRepo{runner: runner, root: path}, nil
}

// Root implements Repo.Root
func (r *ExecRepo) Root() string {
	return r.root
}

// CurrentBranch implements Repo.CurrentBranch
func (r *ExecRepo) CurrentBranch(ctx context.Context) (string, bool, error) {
	out, err := r.runner.Run(ctx, r.root, "branch", "--show-current")
	if err != nil {
		return "", false, err
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", true, nil
	}
	return branch, false, nil
}

// Status implements Repo.Status
func (r *ExecRepo) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := r.runner.Run(ctx, r.root, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParseStatusPorcelain(out), nil
}

// DiffStats implements Repo.DiffStats
func (r *ExecRepo) DiffStats(ctx context.Context, staged bool) (map[string]LineStats, error) {
	args := []string{"diff", "--numstat"}
	if staged {
		args = []string{"diff", "--cached", "--numstat"}
	}
	out, err := r.runner.Run(ctx, r.root, args...)
	if err != nil {
		// Staged diffs resolve HEAD, which does not exist before the
		// first commit. The porcelain status still lists the entries.
		if staged && isUnbornError(err) {
			return map[string]LineStats{}, nil
		}
		return nil, err
	}
	return ParseNumstat(out), nil
}

// Stashes implements Repo.Stashes
func (r *ExecRepo) Stashes(ctx context.Context) ([]string, error) {
	out, err := r.runner.Run(ctx, r.root, "stash", "list")
	if err != nil {
		return nil, err
	}
	return ParseLines(out), nil
}

// Upstream implements Repo.Upstream
func (r *ExecRepo) Upstream(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, r.root, "rev-parse", "--abbrev-ref", "@{upstream}")
	if err != nil {
		// No tracking ref configured is a normal state, not a failure
		if isNoUpstreamError(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AheadBehind implements Repo.AheadBehind
func (r *ExecRepo) AheadBehind(ctx context.Context, upstream string) (int, int, error) {
	out, err := r.runner.Run(ctx, r.root,
		"rev-list", "--left-right", "--count", "HEAD..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	ahead, behind, err := ParseAheadBehind(out)
	if err != nil {
		return 0, 0, domain.Errorf(domain.ErrGitError, "parse rev-list counts: %v", err)
	}
	return ahead, behind, nil
}

// LastCommitTime implements Repo.LastCommitTime
func (r *ExecRepo) LastCommitTime(ctx context.Context) (time.Time, error) {
	out, err := r.runner.Run(ctx, r.root, "log", "-1", "--format=%ct")
	if err != nil {
		if isUnbornError(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return time.Time{}, domain.Errorf(domain.ErrGitError, "parse commit time: %v", err)
	}
	return time.Unix(unix, 0), nil
}

// Branches implements Repo.Branches
func (r *ExecRepo) Branches(ctx context.Context) ([]BranchHead, error) {
	out, err := r.runner.Run(ctx, r.root,
		"for-each-ref", "refs/heads", "--sort=-committerdate", "--format="+branchFormat)
	if err != nil {
		return nil, err
	}
	return ParseBranchHeads(out), nil
}

// CommitsSince implements Repo.CommitsSince
func (r *ExecRepo) CommitsSince(ctx context.Context, ref string, since time.Time, limit int) ([]Commit, error) {
	args := []string{
		"log", ref,
		"--pretty=format:" + logFormat,
		"--numstat",
		"-n", strconv.Itoa(limit),
		"--since=" + since.Format(time.RFC3339),
		"--",
	}
	out, err := r.runner.Run(ctx, r.root, args...)
	if err != nil {
		if isUnbornError(err) {
			return nil, nil
		}
		return nil, err
	}
	return ParseCommitLog(out), nil
}

// isUnbornError reports whether a git failure means the repository or
// ref simply has no commits yet.
func isUnbornError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not have any commits") ||
		strings.Contains(msg, "bad default revision") ||
		strings.Contains(msg, "unknown revision") ||
		strings.Contains(msg, "bad revision") ||
		strings.Contains(msg, "ambiguous argument 'HEAD'")
}

// isNoUpstreamError reports whether a git failure means the current
// branch has no tracking ref.
func isNoUpstreamError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no upstream configured") ||
		strings.Contains(msg, "does not point to a branch") ||
		strings.Contains(msg, "no such branch")
}

// shortHash truncates a full hash to the display length.
func shortHash(hash string) string {
	if len(hash) <= constants.ShortHashLength {
		return hash
	}
	return hash[:constants.ShortHashLength]
}
