// Package pipeline runs a function over a slice with bounded parallelism.
package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one item. Outcomes are index-aligned with the input.
type Outcome[R any] struct {
	Value R
	Err   error
}

// Workers returns n, or the CPU count when n <= 0
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Map applies fn to every item with at most workers calls in flight.
// Per-item errors are recorded in the outcome and never cancel the batch.
// Items not started before ctx is canceled get ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Outcome[R] {
	out := make([]Outcome[R], len(items))

	var g errgroup.Group
	g.SetLimit(Workers(workers))
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			v, err := fn(ctx, item)
			out[i] = Outcome[R]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Values returns the successful values in input order and the number of failures
func Values[R any](outcomes []Outcome[R]) ([]R, int) {
	vals := make([]R, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		vals = append(vals, o.Value)
	}
	return vals, failed
}
