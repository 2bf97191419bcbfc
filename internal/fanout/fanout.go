// Package fanout runs independent units of work under a concurrency cap and
// collects their results in input order.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every item with at most limit calls in flight and returns
// the results positionally aligned with items: out[i] is fn's result for
// items[i], whatever order the calls complete in. Each call writes only its
// own slot, so no locking is needed.
//
// fn must isolate its own failures; Map has no error path. A limit <= 0
// means unbounded.
func Map[In, Out any](ctx context.Context, items []In, limit int, fn func(ctx context.Context, item In) Out) []Out {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out
	}

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(gCtx, item)
			return nil
		})
	}

	_ = g.Wait()
	return out
}
