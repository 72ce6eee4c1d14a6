// Package execution provides the two schedulers used by the index: run work
// items one after another, or fan them out across GOMAXPROCS workers and
// join before returning.
package execution

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Policy int

const (
	Sequential Policy = iota
	Parallel
)

func (p Policy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Workers is the fan-out width of the Parallel policy.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// ForEach calls fn(i) for every i in [0, n). Under Parallel, calls run
// concurrently and ForEach returns after all of them finished; fn must only
// touch state private to index i or read shared state.
func ForEach(p Policy, n int, fn func(i int)) {
	if p != Parallel || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(Workers())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// Map applies fn to every element of in and returns the outputs in input
// order regardless of completion order. The first error wins; under Parallel
// the remaining items that have not started yet are skipped.
func Map[T, R any](p Policy, in []T, fn func(i int, v T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	if p != Parallel || len(in) < 2 {
		for i, v := range in {
			r, err := fn(i, v)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(Workers())
	for i, v := range in {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := fn(i, v)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
