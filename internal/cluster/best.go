package cluster

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options configures a best-of-N clustering.
type Options struct {
	// K is the number of clusters.
	K int

	// Iterations is the fixed assign/update budget of every run.
	Iterations int

	// Runs is the number of independently initialised runs.
	Runs int

	Metric   Metric
	Strategy Strategy

	// Seed derives the random source of every run together with the run
	// index, so the same Seed reproduces the same result.
	Seed uint64

	// Parallelism bounds how many runs execute at once.
	// Zero or negative uses GOMAXPROCS.
	Parallelism int
}

// DefaultOptions returns five clusters, five iterations and three runs using
// the Euclidean metric and the means strategy.
func DefaultOptions() Options {
	return Options{
		K:          5,
		Iterations: 5,
		Runs:       3,
		Metric:     MetricEuclidean,
		Strategy:   StrategyMeans,
	}
}

// BestOf clusters points opts.Runs times from independent random
// initialisations and returns the result with the lowest error. Ties keep the
// earliest run. Runs share only the read-only point slice.
//
// Cancelling ctx stops further runs from starting; runs already in progress
// finish but their results are discarded and ctx.Err() is returned.
func BestOf(ctx context.Context, points []Point, opts Options) (Result, error) {
	if opts.Runs <= 0 {
		return Result{}, fmt.Errorf("%w: runs must be at least 1, got %d", ErrInvalidConfiguration, opts.Runs)
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, opts.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for run := range opts.Runs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := New(points, opts.K, opts.Metric, opts.Strategy, newRunRand(opts.Seed, run))
			if err != nil {
				return err
			}
			l.Run(opts.Iterations)
			results[run] = l.Result()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].Error < results[best].Error {
			best = i
		}
	}
	return results[best], nil
}

func newRunRand(seed uint64, run int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(run)))
}
