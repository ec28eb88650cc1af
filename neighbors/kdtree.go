package neighbors

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/model"
)

// slack widens k-d tree bounds so float64 shortlists never miss a point the
// float32 distance accepts.
const slack = 1e-4

// point implements kdtree.Comparable. Distance is squared Euclidean, as the
// tree's pruning expects.
type point struct {
	idx    int32
	coords []float64
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(point).coords[d]
}

func (p point) Dims() int { return len(p.coords) }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	var sum float64
	for i, v := range p.coords {
		d := v - q.coords[i]
		sum += d * d
	}
	return sum
}

// points implements kdtree.Interface.
type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p points) Pivot(d kdtree.Dim) int {
	return plane{points: p, Dim: d}.Pivot()
}

// plane sorts points along one dimension for median partitioning.
type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.points[i].coords[p.Dim] < p.points[j].coords[p.Dim]
}

func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// tree is the spatial index over one batch of the reference cloud.
type tree struct {
	t *kdtree.Tree
}

func buildTrees(ref model.PointSet, workers int) ([]*tree, error) {
	trees := make([]*tree, ref.Batch)
	err := parallel.For(ref.Batch, workers, func(b int) error {
		pts := make(points, ref.Size)
		coords := make([]float64, ref.Size*ref.Dim)
		for i := range pts {
			c := coords[i*ref.Dim : (i+1)*ref.Dim]
			for j, v := range ref.At(b, i) {
				c[j] = float64(v)
			}
			pts[i] = point{idx: int32(i), coords: c}
		}
		trees[b] = &tree{t: kdtree.New(pts, false)}
		return nil
	})
	return trees, err
}

func queryPoint(q []float32) point {
	c := make([]float64, len(q))
	for i, v := range q {
		c[i] = float64(v)
	}
	return point{idx: -1, coords: c}
}

// within appends to dst every indexed point whose squared distance to q is at
// most r2, in unspecified order.
func (t *tree) within(dst []int32, q point, r2 float64) []int32 {
	keeper := kdtree.NewDistKeeper(r2)
	t.t.NearestSet(keeper, q)
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		dst = append(dst, c.Comparable.(point).idx)
	}
	return dst
}

// ball shortlists the candidates of a radius search.
func (t *tree) ball(dst []int32, q []float32, radius float32) []int32 {
	r := float64(radius) * (1 + slack)
	return t.within(dst, queryPoint(q), r*r)
}

// nearest shortlists a superset of the k nearest points of q: everything no
// farther than the k-th nearest found in float64, widened by slack.
func (t *tree) nearest(dst []int32, q []float32, k int) []int32 {
	qp := queryPoint(q)
	keeper := kdtree.NewNKeeper(k)
	t.t.NearestSet(keeper, qp)

	var kth float64
	for _, c := range keeper.Heap {
		if c.Comparable != nil && c.Dist > kth {
			kth = c.Dist
		}
	}
	r2 := kth*(1+slack)*(1+slack) + 1e-12
	return t.within(dst, qp, r2)
}
