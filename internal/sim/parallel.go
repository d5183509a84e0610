package sim

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunAll runs n independent simulations with at most limit alive at once;
// limit <= 0 means GOMAXPROCS. build creates the i-th simulator inside its
// worker so only running simulators are held in memory. done receives each
// outcome, a build error included, and may be called concurrently.
//
// Only cancellation or an invalid cfg stops the batch early; that error is
// returned.
func RunAll(parent context.Context, n, limit int, cfg Config,
	build func(i int) (*Simulator, error),
	done func(i int, r *Result, err error),
) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := build(i)
			if err != nil {
				done(i, nil, err)
				return nil
			}
			r, err := s.Run(ctx, cfg)
			if err != nil && (ctx.Err() != nil || errors.Is(err, ErrInvalidConfig)) {
				return err
			}
			done(i, r, err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
