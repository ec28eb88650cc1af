// Package parallel runs index-keyed work on a bounded number of goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// For calls fn(i) for every i in [0, n) using at most workers goroutines.
// The first error is returned after all started calls have finished.
// workers <= 1 runs inline on the calling goroutine.
func For(n, workers int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}

// Ranges splits [0, n) into chunks of at most grain items and calls
// fn(lo, hi) for each chunk through For.
func Ranges(n, grain, workers int, fn func(lo, hi int) error) error {
	if grain <= 0 {
		grain = 1
	}
	chunks := (n + grain - 1) / grain
	return For(chunks, workers, func(c int) error {
		lo := c * grain
		return fn(lo, min(lo+grain, n))
	})
}

// Grain picks a chunk size giving each worker a few chunks of n items.
func Grain(n, workers int) int {
	if workers <= 1 {
		return max(n, 1)
	}
	return max(1, n/(workers*4))
}
