// Package gitx reads git repository state.
//
// The data-bearing queries shell out to the git binary, which keeps
// behavior aligned with what developers see in their terminals (stash
// handling and rename detection in particular). Opening and validating
// repositories uses go-git so that "not a repository" is distinguished
// from "repository we failed to read".
package gitx

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/logging"
)

// Runner executes git commands inside repository working trees.
type Runner struct {
	gitPath string
}

// NewRunner locates the git binary on PATH.
func NewRunner() (*Runner, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return nil, domain.Errorf(domain.ErrGitError, "git binary not found: %v", err)
	}
	return &Runner{gitPath: path}, nil
}

// Run executes git with the given arguments in dir and returns stdout.
// Stderr is folded into the returned error.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = dir
	// A scan must never write to the repository, not even an index refresh.
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", domain.Errorf(domain.ErrGitError, "git %s: %v", args[0], ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		logging.Logger.Debug("git command failed",
			"dir", dir, "args", args, "error", msg)
		return "", domain.Errorf(domain.ErrGitError, "git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
