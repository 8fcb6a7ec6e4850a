package scan

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/gitx"
	"github.com/charliek/wip/internal/logging"
)

// Orchestrator fans a scan out over many repositories. Results keep
// the order of the input paths regardless of which worker finishes
// first.
type Orchestrator struct {
	collector *Collector
	open      func(path string) (gitx.Repo, error)
	jobs      int
	timeout   time.Duration
}

// NewOrchestrator builds an Orchestrator that opens repositories with
// the given runner.
func NewOrchestrator(runner *gitx.Runner, opts Options) *Orchestrator {
	o := &Orchestrator{
		collector: NewCollector(opts),
		open: func(path string) (gitx.Repo, error) {
			return gitx.Open(path, runner)
		},
		jobs:    opts.Jobs,
		timeout: opts.Timeout,
	}
	if o.jobs <= 0 {
		o.jobs = constants.DefaultScanJobs
	}
	if o.timeout <= 0 {
		o.timeout = constants.RepoScanTimeout
	}
	return o
}

// ScanAll scans every path concurrently. Paths that are not
// repositories are logged and omitted; each repository gets its own
// timeout so one slow repository cannot stall the whole scan.
func (o *Orchestrator) ScanAll(ctx context.Context, paths []string) []domain.RepoStatus {
	results := make([]*domain.RepoStatus, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(o.jobs)
	for i, path := range paths {
		g.Go(func() error {
			repoCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			repo, err := o.open(path)
			if err != nil {
				logging.Logger.Warn("skipping path", "path", path, "error", err)
				return nil
			}
			st := o.collector.Collect(repoCtx, repo)
			results[i] = &st
			return nil
		})
	}
	// Workers never return errors; failures degrade or skip instead
	_ = g.Wait()

	ordered := make([]domain.RepoStatus, 0, len(paths))
	for _, r := range results {
		if r != nil {
			ordered = append(ordered, *r)
		}
	}
	return ordered
}
