package app

import (
	"context"
	"sync"
)

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartialLimit runs fns on at most limit workers and collects every
// result, even when some of them fail. A failing function never cancels its
// siblings. Functions are started in order, so a limit of 1 runs them strictly
// one after another.
//
// Functions not yet started when ctx is done are reported with ctx.Err().
//
// Example:
//
//	results := ParallelPartialLimit(ctx, 4, fetchFuncs...)
//	for _, r := range results {
//	    if r.Err != nil {
//	        // handle failure for this item only
//	    }
//	}
func ParallelPartialLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))
	if len(fns) == 0 {
		return results
	}

	if limit <= 0 || limit > len(fns) {
		limit = len(fns)
	}

	next := make(chan int)

	var wg sync.WaitGroup

	for range limit {
		wg.Go(func() {
			for i := range next {
				if err := ctx.Err(); err != nil {
					results[i] = PartialResult[T]{Err: err}
					continue
				}

				value, err := fns[i](ctx)
				results[i] = PartialResult[T]{Value: value, Err: err}
			}
		})
	}

	for i := range fns {
		next <- i
	}

	close(next)
	wg.Wait()

	return results
}
