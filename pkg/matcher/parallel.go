// Batch solving. Independent constraint sets are independent searches;
// SolveAll multiplexes them across the internal worker pool, one
// problem per worker at a time.
package matcher

import (
	"context"
	"sync"

	"github.com/gitrdm/gomatcher/internal/parallel"
)

// SolveAll runs one search per constraint set and returns the first
// solution of each, in input order. Entries with no solution are nil.
// The first budget or cancellation error aborts the remaining
// submissions and is returned.
func (m *Matcher) SolveAll(ctx context.Context, batches [][]*Constraint, opts Options) ([]*Solution, error) {
	pool := parallel.NewWorkerPool(0)
	defer pool.Shutdown()

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Solution, len(batches))
	errs := make([]error, len(batches))
	var wg sync.WaitGroup

	for i, constraints := range batches {
		wg.Add(1)
		err := pool.Submit(batchCtx, func() {
			defer wg.Done()
			results[i], errs[i] = m.FirstSolution(batchCtx, constraints, opts)
			if errs[i] != nil {
				cancel()
			}
		})
		if err != nil {
			wg.Done()
			errs[i] = err
			break
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
