package sampling

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/hupe1980/pointgeo/distance"
	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/internal/pool"
	"github.com/hupe1980/pointgeo/model"
)

// selected marks points already in the sample. Real squared distances are never negative.
const selected = -1

// FarthestPoint returns m indices per batch chosen by greedy farthest-point sampling.
//
// Each point tracks its squared distance to the nearest selected point; every round
// selects the unselected point with the largest such distance (smallest index on ties)
// and relaxes the others against it, for O(N·M) work per batch. The result depends
// only on the input and the start index.
func FarthestPoint(points model.PointSet, m int, opts ...Option) (model.IndexSet, error) {
	o := applyOptions(opts)
	if err := validate(points, m); err != nil {
		return model.IndexSet{}, errors.Wrap(err, "farthest point sample")
	}
	if o.start < 0 || o.start >= points.Size {
		return model.IndexSet{}, errors.Wrapf(model.ErrInvalidArgument,
			"farthest point sample: start index %d outside [0, %d)", o.start, points.Size)
	}

	out := model.ZeroIndexSet(points.Batch, m, 1)
	err := parallel.For(points.Batch, o.workers, func(b int) error {
		farthestPoint(points.Cloud(b), points.Dim, o.start, out.Data[b*m:(b+1)*m])
		return nil
	})
	if err != nil {
		return model.IndexSet{}, err
	}
	return out, nil
}

func farthestPoint(cloud []float32, dim, start int, dst []int32) {
	n := len(cloud) / dim

	s := pool.Get()
	defer pool.Put(s)

	minDist := s.Distances(n)
	for i := range minDist {
		minDist[i] = math.MaxFloat32
	}

	cur := start
	dst[0] = int32(cur)
	minDist[cur] = selected

	for j := 1; j < len(dst); j++ {
		p := cloud[cur*dim : (cur+1)*dim]
		best, bestDist := -1, float32(selected)
		for i := 0; i < n; i++ {
			d := minDist[i]
			if d < 0 {
				continue
			}
			if nd := distance.SquaredEuclidean(p, cloud[i*dim:(i+1)*dim]); nd < d {
				d = nd
				minDist[i] = d
			}
			if d > bestDist {
				best, bestDist = i, d
			}
		}
		cur = best
		dst[j] = int32(cur)
		minDist[cur] = selected
	}
}

// Random returns m distinct indices per batch drawn uniformly without replacement.
// Batch b uses seed+b, so results are reproducible for a fixed seed.
func Random(points model.PointSet, m int, seed int64, opts ...Option) (model.IndexSet, error) {
	o := applyOptions(opts)
	if err := validate(points, m); err != nil {
		return model.IndexSet{}, errors.Wrap(err, "random sample")
	}

	out := model.ZeroIndexSet(points.Batch, m, 1)
	err := parallel.For(points.Batch, o.workers, func(b int) error {
		rng := rand.New(rand.NewSource(seed + int64(b))) //nolint:gosec
		dst := out.Data[b*m : (b+1)*m]

		perm := make([]int32, points.Size)
		for i := range perm {
			perm[i] = int32(i)
		}
		// Partial Fisher-Yates: the first m slots form the sample.
		for j := range dst {
			r := j + rng.Intn(len(perm)-j)
			perm[j], perm[r] = perm[r], perm[j]
			dst[j] = perm[j]
		}
		return nil
	})
	if err != nil {
		return model.IndexSet{}, err
	}
	return out, nil
}

func validate(points model.PointSet, m int) error {
	if err := points.Validate(); err != nil {
		return err
	}
	if m <= 0 || m > points.Size {
		return errors.Wrapf(model.ErrInvalidArgument, "sample count %d outside [1, %d]", m, points.Size)
	}
	return nil
}
