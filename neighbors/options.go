package neighbors

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/model"
)

// EmptyPolicy decides how a ball query fills a row when no reference point lies
// within the radius.
type EmptyPolicy int

const (
	// PadNearest fills the row with the nearest reference point.
	PadNearest EmptyPolicy = iota
	// PadQueryIndex fills the row with the query's own position. The position
	// must be a valid reference index, which holds when the queries were sampled
	// from the reference cloud in order.
	PadQueryIndex
)

func (p EmptyPolicy) String() string {
	switch p {
	case PadNearest:
		return "nearest"
	case PadQueryIndex:
		return "query_index"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseEmptyPolicy parses "nearest" or "query_index". The empty string selects PadNearest.
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch s {
	case "", "nearest":
		return PadNearest, nil
	case "query_index":
		return PadQueryIndex, nil
	default:
		return 0, errors.Wrapf(model.ErrInvalidArgument, "unknown empty neighborhood policy %q", s)
	}
}

type options struct {
	workers      int
	spatialIndex bool
	empty        EmptyPolicy
}

// Option configures a neighbor search.
type Option func(*options)

// WithWorkers bounds the number of goroutines. Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSpatialIndex enables the k-d tree candidate shortlist.
func WithSpatialIndex(enabled bool) Option {
	return func(o *options) {
		o.spatialIndex = enabled
	}
}

// WithEmptyPolicy sets the ball query fallback for empty neighborhoods.
func WithEmptyPolicy(p EmptyPolicy) Option {
	return func(o *options) {
		o.empty = p
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

func validatePair(ref, query model.PointSet) error {
	if err := ref.Validate(); err != nil {
		return errors.Wrap(err, "reference")
	}
	if err := query.Validate(); err != nil {
		return errors.Wrap(err, "query")
	}
	if ref.Batch != query.Batch {
		return &model.ShapeError{Field: "batch", Expected: ref.Batch, Actual: query.Batch}
	}
	if ref.Dim != query.Dim {
		return &model.ShapeError{Field: "point dimension", Expected: ref.Dim, Actual: query.Dim}
	}
	return nil
}
