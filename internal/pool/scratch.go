// Package pool recycles per-worker scratch buffers across calls.
// Uses sync.Pool so short-lived kernels do not allocate per batch or per query.
package pool

import (
	"sync"

	"github.com/hupe1980/pointgeo/internal/queue"
)

const (
	// DefaultPoints is the initial capacity of per-point buffers.
	DefaultPoints = 4096

	// DefaultNeighbors is the initial capacity of per-query neighbor buffers.
	DefaultNeighbors = 128

	// maxRetainedPoints bounds the buffers returned to the pool.
	maxRetainedPoints = DefaultPoints * 64
)

// Scratch holds reusable buffers for one worker.
type Scratch struct {
	Dist  []float32    // per reference point
	Found []int32      // ball query hits
	Items []queue.Item // sorted kNN output
	Heap  *queue.TopK  // kNN selection
	Vec   []float32    // one feature vector
}

var scratchPool = sync.Pool{
	New: func() interface{} {
		return &Scratch{
			Dist:  make([]float32, 0, DefaultPoints),
			Found: make([]int32, 0, DefaultNeighbors),
			Items: make([]queue.Item, 0, DefaultNeighbors),
			Heap:  queue.NewTopK(DefaultNeighbors),
			Vec:   make([]float32, 0, DefaultNeighbors),
		}
	},
}

// Get retrieves a Scratch from the pool.
func Get() *Scratch {
	return scratchPool.Get().(*Scratch)
}

// Put returns a Scratch to the pool for reuse.
// Oversized buffers are dropped rather than retained.
func Put(s *Scratch) {
	if cap(s.Dist) > maxRetainedPoints {
		s.Dist = make([]float32, 0, DefaultPoints)
	}
	scratchPool.Put(s)
}

// Distances returns Dist resized to n. Contents are unspecified.
func (s *Scratch) Distances(n int) []float32 {
	if cap(s.Dist) < n {
		s.Dist = make([]float32, n)
	}
	s.Dist = s.Dist[:n]
	return s.Dist
}

// Vector returns Vec resized to n. Contents are unspecified.
func (s *Scratch) Vector(n int) []float32 {
	if cap(s.Vec) < n {
		s.Vec = make([]float32, n)
	}
	s.Vec = s.Vec[:n]
	return s.Vec
}
