package interpolate

import (
	"github.com/pkg/errors"
	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/internal/pool"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/neighbors"
)

// Weights converts neighbor distances into normalized inverse-distance weights:
// w_j = (1/max(d_j, eps)) / Σ_i 1/max(d_i, eps). Every row sums to 1.
// eps <= 0 selects DefaultEpsilon.
func Weights(dist model.DistanceSet, eps float32) model.DistanceSet {
	if !(eps > 0) {
		eps = DefaultEpsilon
	}
	out := model.ZeroDistanceSet(dist.Batch, dist.Queries, dist.Slots)
	for r := 0; r+dist.Slots <= len(dist.Data); r += dist.Slots {
		rowWeights(out.Data[r:r+dist.Slots], dist.Data[r:r+dist.Slots], eps)
	}
	return out
}

// rowWeights sums in float64 so rows with one clamped distance stay normalized.
func rowWeights(dst, dist []float32, eps float32) {
	var norm float64
	for j, d := range dist {
		inv := 1 / float64(max(d, eps))
		dst[j] = float32(inv)
		norm += inv
	}
	for j := range dst {
		dst[j] = float32(float64(dst[j]) / norm)
	}
}

// Interpolate returns, for every row of idx, the weighted sum of the indexed
// feature vectors with weights derived from dist. idx addresses features
// batch-relatively; the result has idx.Queries points of features.Dim values.
func Interpolate(features model.PointSet, idx model.IndexSet, dist model.DistanceSet, opts ...Option) (model.PointSet, error) {
	o := applyOptions(opts)
	if err := features.Validate(); err != nil {
		return model.PointSet{}, errors.Wrap(err, "interpolate: features")
	}
	if idx.Batch != features.Batch {
		return model.PointSet{}, errors.Wrap(&model.ShapeError{Field: "batch", Expected: features.Batch, Actual: idx.Batch}, "interpolate")
	}
	if err := idx.Validate(features.Size); err != nil {
		return model.PointSet{}, errors.Wrap(err, "interpolate: indices")
	}
	if !dist.Matches(idx) {
		return model.PointSet{}, errors.Wrapf(model.ErrInvalidArgument,
			"interpolate: distances (%d, %d, %d) do not match indices %s", dist.Batch, dist.Queries, dist.Slots, idx.Shape())
	}

	dim := features.Dim
	out := model.ZeroPointSet(idx.Batch, idx.Queries, dim)

	total := idx.Batch * idx.Queries
	err := parallel.Ranges(total, parallel.Grain(total, o.workers), o.workers, func(lo, hi int) error {
		s := pool.Get()
		defer pool.Put(s)

		w := s.Distances(idx.Slots)
		for t := lo; t < hi; t++ {
			b, q := t/idx.Queries, t%idx.Queries
			rowWeights(w, dist.Row(b, q), o.eps)

			dst := out.At(b, q)
			for j, i := range idx.Row(b, q) {
				v := s.Vector(dim)
				copy(v, features.At(b, int(i)))
				vek32.MulNumber_Inplace(v, w[j])
				vek32.Add_Inplace(dst, v)
			}
		}
		return nil
	})
	if err != nil {
		return model.PointSet{}, errors.Wrap(err, "interpolate")
	}
	return out, nil
}

// ThreeNN finds, for every dense point, its nearest sparse points: three of them,
// or all of them when the sparse set holds fewer than three.
func ThreeNN(dense, sparse model.PointSet, opts ...neighbors.Option) (model.IndexSet, model.DistanceSet, error) {
	k := min(Neighbors, sparse.Size)
	return neighbors.KNN(sparse, dense, k, opts...)
}

// Propagate interpolates sparseFeatures, attached to the sparse points, onto the
// dense points. When skip is non-nil its per-dense-point features are appended
// after the interpolated ones.
func Propagate(dense, sparse, sparseFeatures model.PointSet, skip *model.PointSet, opts ...Option) (model.PointSet, error) {
	o := applyOptions(opts)
	if sparseFeatures.Batch != sparse.Batch || sparseFeatures.Size != sparse.Size {
		return model.PointSet{}, errors.Wrapf(model.ErrInvalidArgument,
			"propagate: sparse features %s do not match sparse points %s", sparseFeatures.Shape(), sparse.Shape())
	}

	nopts := append([]neighbors.Option{neighbors.WithWorkers(o.workers)}, o.neighbors...)
	idx, dist, err := ThreeNN(dense, sparse, nopts...)
	if err != nil {
		return model.PointSet{}, errors.Wrap(err, "propagate")
	}

	out, err := Interpolate(sparseFeatures, idx, dist, opts...)
	if err != nil {
		return model.PointSet{}, errors.Wrap(err, "propagate")
	}
	if skip == nil {
		return out, nil
	}
	if err := skip.Validate(); err != nil {
		return model.PointSet{}, errors.Wrap(err, "propagate: skip features")
	}
	out, err = out.Concat(*skip)
	if err != nil {
		return model.PointSet{}, errors.Wrap(err, "propagate: skip features")
	}
	return out, nil
}
