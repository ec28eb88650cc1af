package sampling

import "github.com/hupe1980/pointgeo/internal/parallel"

type options struct {
	start   int
	workers int
}

// Option configures a sampling call.
type Option func(*options)

// WithStart sets the index farthest-point sampling begins from. Default 0.
func WithStart(i int) Option {
	return func(o *options) {
		o.start = i
	}
}

// WithWorkers bounds the number of batches sampled concurrently.
// Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers <= 0 {
		o.workers = parallel.DefaultWorkers()
	}
	return o
}
