package model

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Bergam0t/ciw-example-animation/internal/sim"
)

// Replications holds the outcome of running an experiment several times.
type Replications struct {
	Experiment Experiment     `json:"experiment"`
	Metrics    []Metrics      `json:"metrics"` // one per replication, in order
	Records    [][]sim.Record `json:"-"`       // raw records per replication
}

// MultipleReplications runs n independently seeded replications of the
// experiment. Replication i is seeded with baseSeed+i so results are
// reproducible and independent of scheduling order.
func MultipleReplications(ctx context.Context, exp Experiment, n int, baseSeed int64) (*Replications, error) {
	if n < 1 {
		return nil, fmt.Errorf("number of replications must be >= 1, got %d", n)
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	out := &Replications{
		Experiment: exp,
		Metrics:    make([]Metrics, n),
		Records:    make([][]sim.Record, n),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, recs, err := Run(exp, baseSeed+int64(i))
			if err != nil {
				return fmt.Errorf("replication %d: %w", i, err)
			}
			out.Metrics[i] = m
			out.Records[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
