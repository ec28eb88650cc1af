package interpolate

import (
	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/neighbors"
)

const (
	// DefaultEpsilon clamps distances before inversion.
	DefaultEpsilon float32 = 1e-10

	// Neighbors is the number of sparse points each dense point interpolates from.
	Neighbors = 3
)

type options struct {
	eps       float32
	workers   int
	neighbors []neighbors.Option
}

// Option configures interpolation.
type Option func(*options)

// WithEpsilon sets the distance clamp. Values <= 0 select DefaultEpsilon.
func WithEpsilon(eps float32) Option {
	return func(o *options) {
		o.eps = eps
	}
}

// WithWorkers bounds the number of goroutines. Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithNeighborOptions forwards options to the nearest neighbor search of Propagate.
func WithNeighborOptions(opts ...neighbors.Option) Option {
	return func(o *options) {
		o.neighbors = append(o.neighbors, opts...)
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if !(o.eps > 0) {
		o.eps = DefaultEpsilon
	}
	if o.workers <= 0 {
		o.workers = parallel.DefaultWorkers()
	}
	return o
}
