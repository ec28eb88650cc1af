package neighbors

import (
	"github.com/pkg/errors"

	"github.com/hupe1980/pointgeo/distance"
	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/internal/pool"
	"github.com/hupe1980/pointgeo/internal/queue"
	"github.com/hupe1980/pointgeo/model"
)

// KNN returns, for every query point, the k nearest reference indices ordered by
// increasing Euclidean distance (smaller index first on ties), and those distances.
// k must not exceed the reference size.
func KNN(ref, query model.PointSet, k int, opts ...Option) (model.IndexSet, model.DistanceSet, error) {
	o := applyOptions(opts)
	if err := validatePair(ref, query); err != nil {
		return model.IndexSet{}, model.DistanceSet{}, errors.Wrap(err, "knn")
	}
	if k <= 0 || k > ref.Size {
		return model.IndexSet{}, model.DistanceSet{}, errors.Wrapf(model.ErrInvalidArgument,
			"knn: k %d outside [1, %d]", k, ref.Size)
	}

	var trees []*tree
	if o.spatialIndex {
		var err error
		if trees, err = buildTrees(ref, o.workers); err != nil {
			return model.IndexSet{}, model.DistanceSet{}, err
		}
	}

	idx := model.ZeroIndexSet(ref.Batch, query.Size, k)
	dist := model.ZeroDistanceSet(ref.Batch, query.Size, k)

	total := ref.Batch * query.Size
	err := parallel.Ranges(total, parallel.Grain(total, o.workers), o.workers, func(lo, hi int) error {
		s := pool.Get()
		defer pool.Put(s)

		for t := lo; t < hi; t++ {
			b, q := t/query.Size, t%query.Size
			qp := query.At(b, q)
			cloud := ref.Cloud(b)

			s.Heap.Reset(k)
			if trees != nil {
				s.Found = trees[b].nearest(s.Found[:0], qp, k)
				for _, i := range s.Found {
					s.Heap.Push(queue.Item{Index: i, Distance: distance.Euclidean(qp, cloud[int(i)*ref.Dim:(int(i)+1)*ref.Dim])})
				}
			} else {
				for i := 0; i < ref.Size; i++ {
					s.Heap.Push(queue.Item{Index: int32(i), Distance: distance.Euclidean(qp, cloud[i*ref.Dim:(i+1)*ref.Dim])})
				}
			}

			s.Items = s.Heap.Drain(s.Items)
			row, drow := idx.Row(b, q), dist.Row(b, q)
			for i, it := range s.Items {
				row[i] = it.Index
				drow[i] = it.Distance
			}
		}
		return nil
	})
	if err != nil {
		return model.IndexSet{}, model.DistanceSet{}, errors.Wrap(err, "knn")
	}
	return idx, dist, nil
}
