// Package harness builds throwaway git repositories for integration
// tests. Everything shells out to the real git binary; callers should
// skip when it is not installed.
package harness

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// DefaultAuthor is the identity commits carry unless a test overrides it.
const (
	DefaultAuthor = "Test User"
	DefaultEmail  = "test@example.com"
)

// HasGit reports whether the git binary is available.
func HasGit() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Repo is a real git working tree under a test temp directory.
type Repo struct {
	Path string
	tb   testing.TB
}

// NewRepo creates an empty repository with a main branch and the
// default test identity configured.
func NewRepo(tb testing.TB) *Repo {
	tb.Helper()
	return NewRepoAt(tb, filepath.Join(tb.TempDir(), "repo"))
}

// NewRepoAt creates a repository at an exact path, for tests that care
// where the repo sits relative to a scan root.
func NewRepoAt(tb testing.TB, path string) *Repo {
	tb.Helper()

	if err := os.MkdirAll(path, 0755); err != nil {
		tb.Fatalf("mkdir %s: %v", path, err)
	}
	r := &Repo{Path: path, tb: tb}
	r.Git("init", "--initial-branch=main", ".")
	r.Git("config", "user.name", DefaultAuthor)
	r.Git("config", "user.email", DefaultEmail)
	return r
}

// NewRepoWithOrigin creates a bare repository acting as origin and a
// clone of it with one pushed commit on main.
//
//	tb.TempDir()/
//	├── bare/   <- git init --bare (acts as origin)
//	└── clone/  <- git clone bare/ clone/ (has origin remote)
func NewRepoWithOrigin(tb testing.TB) (clone *Repo, barePath string) {
	tb.Helper()

	baseDir := tb.TempDir()
	barePath = filepath.Join(baseDir, "bare")
	clonePath := filepath.Join(baseDir, "clone")

	runGit(tb, baseDir, "init", "--bare", "--initial-branch=main", barePath)
	runGit(tb, baseDir, "clone", barePath, clonePath)

	clone = &Repo{Path: clonePath, tb: tb}
	clone.Git("config", "user.name", DefaultAuthor)
	clone.Git("config", "user.email", DefaultEmail)

	clone.WriteFile("README.md", "# Test Repo\n")
	clone.Commit("Initial commit")
	clone.Git("branch", "-M", "main")
	clone.Git("push", "-u", "origin", "main")

	return clone, barePath
}

// Clone checks out another working copy of the same origin, so tests
// can push commits the first clone has not fetched.
func (r *Repo) Clone(origin string) *Repo {
	r.tb.Helper()

	path := filepath.Join(r.tb.TempDir(), "clone2")
	runGit(r.tb, filepath.Dir(path), "clone", origin, path)

	other := &Repo{Path: path, tb: r.tb}
	other.Git("config", "user.name", DefaultAuthor)
	other.Git("config", "user.email", DefaultEmail)
	return other
}

// Git runs a git command in the repository and returns its output,
// failing the test on error.
func (r *Repo) Git(args ...string) string {
	r.tb.Helper()
	return runGit(r.tb, r.Path, args...)
}

// WriteFile writes content to a path relative to the repository root,
// creating parent directories as needed.
func (r *Repo) WriteFile(rel, content string) {
	r.tb.Helper()

	full := filepath.Join(r.Path, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		r.tb.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		r.tb.Fatalf("write %s: %v", rel, err)
	}
}

// Commit stages everything and commits as the default test identity.
func (r *Repo) Commit(message string) {
	r.tb.Helper()
	r.CommitAt(message, DefaultAuthor, time.Now())
}

// CommitAs stages everything and commits under another author name,
// for agent attribution tests.
func (r *Repo) CommitAs(message, author string) {
	r.tb.Helper()
	r.CommitAt(message, author, time.Now())
}

// CommitAt stages everything and commits with a fixed author name and
// timestamp, for recency window tests.
func (r *Repo) CommitAt(message, author string, when time.Time) {
	r.tb.Helper()

	r.Git("add", "-A")

	date := when.Format(time.RFC3339)
	cmd := exec.Command("git", "commit", "-m", message, "--allow-empty")
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+author,
		"GIT_AUTHOR_EMAIL="+DefaultEmail,
		"GIT_AUTHOR_DATE="+date,
		"GIT_COMMITTER_NAME="+DefaultAuthor,
		"GIT_COMMITTER_EMAIL="+DefaultEmail,
		"GIT_COMMITTER_DATE="+date,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		r.tb.Fatalf("git commit failed in %s: %v\nOutput: %s", r.Path, err, output)
	}
}

// Branch creates and checks out a branch.
func (r *Repo) Branch(name string) {
	r.tb.Helper()
	r.Git("checkout", "-b", name)
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.tb.Helper()
	r.Git("checkout", name)
}

// Stash stashes the working tree under a message.
func (r *Repo) Stash(message string) {
	r.tb.Helper()
	r.Git("stash", "push", "-m", message)
}

// runGit executes a git command in dir with a pinned identity.
func runGit(tb testing.TB, dir string, args ...string) string {
	tb.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+DefaultAuthor,
		"GIT_AUTHOR_EMAIL="+DefaultEmail,
		"GIT_COMMITTER_NAME="+DefaultAuthor,
		"GIT_COMMITTER_EMAIL="+DefaultEmail,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		tb.Fatalf("git %v failed in %s: %v\nOutput: %s", args, dir, err, output)
	}
	return string(output)
}
