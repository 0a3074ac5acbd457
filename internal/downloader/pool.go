package downloader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"redditgrab/pkg/logger"
)

// Pool runs a function over a batch of jobs with a bounded number of
// goroutines and hands the results back in job order
type Pool[J, R any] struct {
	numWorkers int
	logger     logger.Logger
}

// NewPool creates a pool with numWorkers goroutines; values below 1 mean 1
func NewPool[J, R any](numWorkers int, log logger.Logger) *Pool[J, R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool[J, R]{
		numWorkers: numWorkers,
		logger:     log,
	}
}

// Workers returns the number of goroutines the pool runs
func (p *Pool[J, R]) Workers() int {
	return p.numWorkers
}

// Map calls fn for every job and returns the results so that results[i]
// belongs to jobs[i]. fn reports its own failures inside R. When ctx is
// cancelled jobs not yet started are dropped and ctx's error is returned.
func (p *Pool[J, R]) Map(ctx context.Context, jobs []J, fn func(context.Context, J) R) ([]R, error) {
	results := make([]R, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	p.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
		"jobs":        len(jobs),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.numWorkers)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(gctx, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.DebugWithFields("Worker pool finished", map[string]interface{}{
		"jobs": len(jobs),
	})
	return results, nil
}
