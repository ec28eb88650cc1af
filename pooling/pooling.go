package pooling

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/internal/pool"
	"github.com/hupe1980/pointgeo/model"
)

// DefaultDecay is the distance decay of WeightedAvg.
const DefaultDecay float32 = 5

// Mode selects a neighborhood reduction.
type Mode int

const (
	// ModeMax takes the per-channel maximum.
	ModeMax Mode = iota
	// ModeAvg takes the per-channel mean.
	ModeAvg
	// ModeWeightedAvg weights each slot by exp(-decay·‖offset‖), normalized per neighborhood.
	ModeWeightedAvg
	// ModeMaxAndAvg emits the mean followed by the maximum, doubling the width.
	ModeMaxAndAvg
)

func (m Mode) String() string {
	switch m {
	case ModeMax:
		return "max"
	case ModeAvg:
		return "avg"
	case ModeWeightedAvg:
		return "weighted_avg"
	case ModeMaxAndAvg:
		return "max_and_avg"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMode parses max, avg, weighted_avg or max_and_avg. The empty string selects ModeMax.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "max":
		return ModeMax, nil
	case "avg":
		return ModeAvg, nil
	case "weighted_avg":
		return ModeWeightedAvg, nil
	case "max_and_avg":
		return ModeMaxAndAvg, nil
	default:
		return 0, errors.Wrapf(model.ErrInvalidArgument, "unknown pooling mode %q", s)
	}
}

// OutputDim returns the pooled width for input width dim.
func (m Mode) OutputDim(dim int) int {
	if m == ModeMaxAndAvg {
		return 2 * dim
	}
	return dim
}

type options struct {
	workers int
	counts  []int32
	offsets *model.GroupedSet
	decay   float32
}

// Option configures Pool.
type Option func(*options)

// WithWorkers bounds the number of goroutines. Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCounts limits ModeAvg to the first counts[b*Queries+q] slots of each
// neighborhood, skipping ball query padding.
func WithCounts(counts []int32) Option {
	return func(o *options) {
		o.counts = counts
	}
}

// WithOffsets supplies the centered neighbor coordinates ModeWeightedAvg weighs by.
func WithOffsets(offsets model.GroupedSet) Option {
	return func(o *options) {
		o.offsets = &offsets
	}
}

// WithDecay sets the ModeWeightedAvg decay. Values <= 0 select DefaultDecay.
func WithDecay(decay float32) Option {
	return func(o *options) {
		o.decay = decay
	}
}

// Pool reduces g with the given mode.
func Pool(g model.GroupedSet, mode Mode, opts ...Option) (model.PointSet, error) {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}

	switch mode {
	case ModeMax:
		return maxPool(g, o.workers)
	case ModeAvg:
		return avgPool(g, o.counts, o.workers)
	case ModeWeightedAvg:
		if o.offsets == nil {
			return model.PointSet{}, errors.Wrap(model.ErrInvalidArgument, "pool: weighted_avg needs neighbor offsets")
		}
		return weightedAvgPool(g, *o.offsets, o.decay, o.workers)
	case ModeMaxAndAvg:
		return maxAndAvgPool(g, o.workers)
	default:
		return model.PointSet{}, errors.Wrapf(model.ErrInvalidArgument, "pool: unknown mode %s", mode)
	}
}

// Max returns the per-channel maximum of every neighborhood.
func Max(g model.GroupedSet) (model.PointSet, error) {
	return maxPool(g, 0)
}

// Avg returns the per-channel mean of every neighborhood. When counts is non-nil
// only the first counts[b*Queries+q] slots are averaged; a zero count falls back
// to the first slot.
func Avg(g model.GroupedSet, counts []int32) (model.PointSet, error) {
	return avgPool(g, counts, 0)
}

// WeightedAvg returns the mean of every neighborhood weighted by
// exp(-decay·‖offset‖), where offsets holds each slot's position relative to
// its centroid. decay <= 0 selects DefaultDecay.
func WeightedAvg(g, offsets model.GroupedSet, decay float32) (model.PointSet, error) {
	return weightedAvgPool(g, offsets, decay, 0)
}

// MaxAndAvg returns the mean followed by the maximum of every neighborhood.
func MaxAndAvg(g model.GroupedSet) (model.PointSet, error) {
	return maxAndAvgPool(g, 0)
}

func maxPool(g model.GroupedSet, workers int) (model.PointSet, error) {
	return reduce(g, g.Dim, workers, "max pool", func(b, q int, dst []float32, _ *pool.Scratch) {
		maxInto(dst, g, b, q)
	})
}

func avgPool(g model.GroupedSet, counts []int32, workers int) (model.PointSet, error) {
	if counts != nil && len(counts) != g.Batch*g.Queries {
		return model.PointSet{}, errors.Wrap(&model.ShapeError{Field: "counts", Expected: g.Batch * g.Queries, Actual: len(counts)}, "avg pool")
	}
	return reduce(g, g.Dim, workers, "avg pool", func(b, q int, dst []float32, _ *pool.Scratch) {
		n := g.Slots
		if counts != nil {
			n = min(max(int(counts[b*g.Queries+q]), 1), g.Slots)
		}
		avgInto(dst, g, b, q, n)
	})
}

func weightedAvgPool(g, offsets model.GroupedSet, decay float32, workers int) (model.PointSet, error) {
	if !(decay > 0) {
		decay = DefaultDecay
	}
	if err := offsets.Validate(); err != nil {
		return model.PointSet{}, errors.Wrap(err, "weighted avg pool: offsets")
	}
	if offsets.Batch != g.Batch || offsets.Queries != g.Queries || offsets.Slots != g.Slots {
		return model.PointSet{}, errors.Wrapf(model.ErrInvalidArgument,
			"weighted avg pool: offsets %s do not match features %s", offsets.Shape(), g.Shape())
	}

	return reduce(g, g.Dim, workers, "weighted avg pool", func(b, q int, dst []float32, s *pool.Scratch) {
		// Weights are shifted by the smallest offset norm so the nearest slot
		// weighs exp(0) and far neighborhoods do not underflow to zero.
		w := s.Distances(g.Slots)
		nearest := math.Inf(1)
		for j := 0; j < g.Slots; j++ {
			o := offsets.At(b, q, j)
			w[j] = float32(math.Sqrt(float64(vek32.Dot(o, o))))
			nearest = math.Min(nearest, float64(w[j]))
		}
		var sum float64
		for j := 0; j < g.Slots; j++ {
			e := math.Exp(-float64(decay) * (float64(w[j]) - nearest))
			w[j] = float32(e)
			sum += e
		}
		for j := 0; j < g.Slots; j++ {
			v := s.Vector(g.Dim)
			copy(v, g.At(b, q, j))
			vek32.MulNumber_Inplace(v, float32(float64(w[j])/sum))
			vek32.Add_Inplace(dst, v)
		}
	})
}

func maxAndAvgPool(g model.GroupedSet, workers int) (model.PointSet, error) {
	return reduce(g, 2*g.Dim, workers, "max and avg pool", func(b, q int, dst []float32, _ *pool.Scratch) {
		avgInto(dst[:g.Dim], g, b, q, g.Slots)
		maxInto(dst[g.Dim:], g, b, q)
	})
}

func maxInto(dst []float32, g model.GroupedSet, b, q int) {
	copy(dst, g.At(b, q, 0))
	for s := 1; s < g.Slots; s++ {
		vek32.Maximum_Inplace(dst, g.At(b, q, s))
	}
}

func avgInto(dst []float32, g model.GroupedSet, b, q, n int) {
	for s := 0; s < n; s++ {
		vek32.Add_Inplace(dst, g.At(b, q, s))
	}
	vek32.MulNumber_Inplace(dst, 1/float32(n))
}

// reduce runs fn for every (batch, query) with dst set to the zeroed output vector.
func reduce(g model.GroupedSet, outDim, workers int, op string, fn func(b, q int, dst []float32, s *pool.Scratch)) (model.PointSet, error) {
	if err := g.Validate(); err != nil {
		return model.PointSet{}, errors.Wrap(err, op)
	}
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}

	out := model.ZeroPointSet(g.Batch, g.Queries, outDim)
	total := g.Batch * g.Queries
	err := parallel.Ranges(total, parallel.Grain(total, workers), workers, func(lo, hi int) error {
		s := pool.Get()
		defer pool.Put(s)

		for t := lo; t < hi; t++ {
			fn(t/g.Queries, t%g.Queries, out.At(t/g.Queries, t%g.Queries), s)
		}
		return nil
	})
	if err != nil {
		return model.PointSet{}, errors.Wrap(err, op)
	}
	return out, nil
}
