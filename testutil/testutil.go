package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/pointgeo/model"
)

// Neighbor is a reference index with its Euclidean distance to a query.
type Neighbor struct {
	Index    int32
	Distance float32
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformCloud generates batch clouds of n points uniform in [0, 1)^dim.
func (r *RNG) UniformCloud(batch, n, dim int) model.PointSet {
	p := model.ZeroPointSet(batch, n, dim)
	r.FillUniformRange(p.Data, 0, 1)
	return p
}

// GaussianCloud generates batch clouds of n points around the origin with the given spread.
func (r *RNG) GaussianCloud(batch, n, dim int, spread float32) model.PointSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := model.ZeroPointSet(batch, n, dim)
	for i := range p.Data {
		p.Data[i] = float32(r.rand.NormFloat64()) * spread
	}
	return p
}

// GridCloud generates a single cloud on an integer side×side×side lattice.
// Lattices are full of equal distances and exercise tie-breaking.
func GridCloud(side int) model.PointSet {
	p := model.ZeroPointSet(1, side*side*side, 3)
	i := 0
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			for z := 0; z < side; z++ {
				copy(p.At(0, i), []float32{float32(x), float32(y), float32(z)})
				i++
			}
		}
	}
	return p
}

// LineCloud generates a single cloud of n points at x = 0..n-1 on the x axis.
func LineCloud(n int) model.PointSet {
	p := model.ZeroPointSet(1, n, 3)
	for i := 0; i < n; i++ {
		p.At(0, i)[0] = float32(i)
	}
	return p
}

// LineFeatures returns a single-channel feature set whose value is the point's x coordinate.
func LineFeatures(n int) model.PointSet {
	p := model.ZeroPointSet(1, n, 1)
	for i := 0; i < n; i++ {
		p.Data[i] = float32(i)
	}
	return p
}

// BruteForceKNN returns the k nearest points of cloud to query, ascending by
// distance with ties broken by index. It is the reference for neighbor tests.
func BruteForceKNN(cloud []float32, dim int, query []float32, k int) []Neighbor {
	n := len(cloud) / dim
	results := make([]Neighbor, n)
	for i := 0; i < n; i++ {
		results[i] = Neighbor{Index: int32(i), Distance: euclidean(query, cloud[i*dim:(i+1)*dim])}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Within returns, in index order, every point of cloud within radius of query.
func Within(cloud []float32, dim int, query []float32, radius float32) []int32 {
	var out []int32
	for i := 0; i < len(cloud)/dim; i++ {
		if euclidean(query, cloud[i*dim:(i+1)*dim]) <= radius {
			out = append(out, int32(i))
		}
	}
	return out
}

func euclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
