package favicons

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs a batch of independent tasks. Run calls task once for every
// index in [0, n) and returns the first error encountered.
type Scheduler interface {
	Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error
}

// Sequential runs tasks one at a time in index order and stops at the first failure.
// It suits hosts whose image engine is not safe to call from several goroutines.
type Sequential struct{}

// Run implements Scheduler.
func (Sequential) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Concurrent runs tasks in parallel goroutines. After the first failure the
// tasks that have not started yet are skipped; tasks already running finish
// and their results are discarded.
type Concurrent struct {
	// Limit bounds the number of tasks running at once. Zero means no limit.
	Limit int
}

// Run implements Scheduler.
func (c Concurrent) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if c.Limit > 0 {
		g.SetLimit(c.Limit)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	return g.Wait()
}

// HostScheduler returns the scheduling policy suited to the operating
// system named by goos, as reported by runtime.GOOS.
func HostScheduler(goos string) Scheduler {
	if goos == "windows" {
		return Sequential{}
	}
	return Concurrent{}
}

// RunAll runs tasks through s and returns their results in task order.
func RunAll[T any](ctx context.Context, s Scheduler, tasks []func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(tasks))
	err := s.Run(ctx, len(tasks), func(ctx context.Context, i int) error {
		v, err := tasks[i](ctx)
		if err != nil {
			return err
		}
		results[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
