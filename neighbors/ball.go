package neighbors

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/hupe1980/pointgeo/distance"
	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/internal/pool"
	"github.com/hupe1980/pointgeo/model"
)

// BallQuery returns, for every query point, up to k reference indices within
// Euclidean distance radius, ordered by reference index.
//
// Rows with fewer than k hits repeat the first hit. Rows with no hit are filled
// according to the EmptyPolicy. The second result holds the number of real hits
// per (batch, query), in [0, k], laid out as Batch × Queries.
func BallQuery(ref, query model.PointSet, radius float32, k int, opts ...Option) (model.IndexSet, []int32, error) {
	o := applyOptions(opts)
	if err := validatePair(ref, query); err != nil {
		return model.IndexSet{}, nil, errors.Wrap(err, "ball query")
	}
	if k <= 0 {
		return model.IndexSet{}, nil, errors.Wrapf(model.ErrInvalidArgument, "ball query: sample count %d must be positive", k)
	}
	if !(radius > 0) {
		return model.IndexSet{}, nil, errors.Wrapf(model.ErrInvalidArgument, "ball query: radius %v must be positive", radius)
	}

	var trees []*tree
	if o.spatialIndex {
		var err error
		if trees, err = buildTrees(ref, o.workers); err != nil {
			return model.IndexSet{}, nil, err
		}
	}

	idx := model.ZeroIndexSet(ref.Batch, query.Size, k)
	counts := make([]int32, ref.Batch*query.Size)

	total := ref.Batch * query.Size
	err := parallel.Ranges(total, parallel.Grain(total, o.workers), o.workers, func(lo, hi int) error {
		s := pool.Get()
		defer pool.Put(s)

		for t := lo; t < hi; t++ {
			b, q := t/query.Size, t%query.Size
			qp := query.At(b, q)
			cloud := ref.Cloud(b)

			var found []int32
			if trees != nil {
				found = ballIndexed(s.Found[:0], trees[b], cloud, ref.Dim, qp, radius, k)
			} else {
				found = ballScan(s.Found[:0], cloud, ref.Dim, qp, radius, k)
			}
			s.Found = found

			counts[t] = int32(len(found))
			row := idx.Row(b, q)
			if len(found) == 0 {
				fill, err := emptyFill(o.empty, cloud, ref.Dim, qp, q, ref.Size)
				if err != nil {
					return err
				}
				found = append(found, fill)
			}
			n := copy(row, found)
			for i := n; i < k; i++ {
				row[i] = found[0]
			}
		}
		return nil
	})
	if err != nil {
		return model.IndexSet{}, nil, errors.Wrap(err, "ball query")
	}
	return idx, counts, nil
}

// ballScan collects the first k indices within radius in index order.
func ballScan(dst []int32, cloud []float32, dim int, q []float32, radius float32, k int) []int32 {
	for i := 0; i < len(cloud)/dim; i++ {
		if distance.Euclidean(q, cloud[i*dim:(i+1)*dim]) <= radius {
			dst = append(dst, int32(i))
			if len(dst) == k {
				break
			}
		}
	}
	return dst
}

func ballIndexed(dst []int32, t *tree, cloud []float32, dim int, q []float32, radius float32, k int) []int32 {
	candidates := t.ball(dst, q, radius)
	slices.Sort(candidates)

	kept := candidates[:0]
	for _, i := range candidates {
		if distance.Euclidean(q, cloud[int(i)*dim:(int(i)+1)*dim]) <= radius {
			kept = append(kept, i)
			if len(kept) == k {
				break
			}
		}
	}
	return kept
}

func emptyFill(p EmptyPolicy, cloud []float32, dim int, q []float32, qi, size int) (int32, error) {
	switch p {
	case PadQueryIndex:
		if qi >= size {
			return 0, errors.Wrapf(model.ErrInvalidArgument,
				"empty neighborhood for query %d which is not a reference index (size %d)", qi, size)
		}
		return int32(qi), nil
	default:
		best, bestDist := 0, distance.Euclidean(q, cloud[:dim])
		for i := 1; i < size; i++ {
			if d := distance.Euclidean(q, cloud[i*dim:(i+1)*dim]); d < bestDist {
				best, bestDist = i, d
			}
		}
		return int32(best), nil
	}
}
