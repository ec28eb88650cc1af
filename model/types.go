package model

import (
	"fmt"
	"slices"

	"github.com/hupe1980/pointgeo/internal/conv"
)

// PointSet holds Batch clouds of Size points, each a vector of Dim float32 values.
type PointSet struct {
	Batch int
	Size  int
	Dim   int
	Data  []float32
}

// NewPointSet wraps data as a point set and validates its shape.
func NewPointSet(batch, size, dim int, data []float32) (PointSet, error) {
	p := PointSet{Batch: batch, Size: size, Dim: dim, Data: data}
	if err := p.Validate(); err != nil {
		return PointSet{}, err
	}
	return p, nil
}

// ZeroPointSet allocates a zero-filled point set.
func ZeroPointSet(batch, size, dim int) PointSet {
	return PointSet{Batch: batch, Size: size, Dim: dim, Data: make([]float32, batch*size*dim)}
}

// Validate checks that the shape is positive and matches the buffer length.
func (p PointSet) Validate() error {
	if p.Batch <= 0 || p.Size <= 0 || p.Dim <= 0 {
		return fmt.Errorf("%w: point set shape %s must be positive", ErrInvalidArgument, p.Shape())
	}
	if err := conv.Indexable(p.Size); err != nil {
		return fmt.Errorf("%w: point set %w", ErrInvalidArgument, err)
	}
	if want := p.Batch * p.Size * p.Dim; len(p.Data) != want {
		return &ShapeError{Field: "point set data", Expected: want, Actual: len(p.Data)}
	}
	return nil
}

// Shape returns a human-readable shape string.
func (p PointSet) Shape() string {
	return fmt.Sprintf("(%d, %d, %d)", p.Batch, p.Size, p.Dim)
}

// Cloud returns the Size*Dim values of batch b.
func (p PointSet) Cloud(b int) []float32 {
	n := p.Size * p.Dim
	return p.Data[b*n : (b+1)*n]
}

// At returns point i of batch b. The slice aliases p.Data.
func (p PointSet) At(b, i int) []float32 {
	off := (b*p.Size + i) * p.Dim
	return p.Data[off : off+p.Dim]
}

// Clone returns a deep copy.
func (p PointSet) Clone() PointSet {
	p.Data = slices.Clone(p.Data)
	return p
}

// Concat joins p and q along the feature axis: each output point is p's
// vector followed by q's.
func (p PointSet) Concat(q PointSet) (PointSet, error) {
	if p.Batch != q.Batch {
		return PointSet{}, &ShapeError{Field: "batch", Expected: p.Batch, Actual: q.Batch}
	}
	if p.Size != q.Size {
		return PointSet{}, &ShapeError{Field: "size", Expected: p.Size, Actual: q.Size}
	}
	out := ZeroPointSet(p.Batch, p.Size, p.Dim+q.Dim)
	for b := 0; b < p.Batch; b++ {
		for i := 0; i < p.Size; i++ {
			dst := out.At(b, i)
			copy(dst, p.At(b, i))
			copy(dst[p.Dim:], q.At(b, i))
		}
	}
	return out, nil
}

// IndexSet holds, for every (batch, query), a row of Slots batch-relative indices.
type IndexSet struct {
	Batch   int
	Queries int
	Slots   int
	Data    []int32
}

// NewIndexSet wraps data as an index set and checks the buffer length.
func NewIndexSet(batch, queries, slots int, data []int32) (IndexSet, error) {
	s := IndexSet{Batch: batch, Queries: queries, Slots: slots, Data: data}
	if batch <= 0 || queries <= 0 || slots <= 0 {
		return IndexSet{}, fmt.Errorf("%w: index set shape %s must be positive", ErrInvalidArgument, s.Shape())
	}
	if want := batch * queries * slots; len(data) != want {
		return IndexSet{}, &ShapeError{Field: "index set data", Expected: want, Actual: len(data)}
	}
	return s, nil
}

// ZeroIndexSet allocates a zero-filled index set.
func ZeroIndexSet(batch, queries, slots int) IndexSet {
	return IndexSet{Batch: batch, Queries: queries, Slots: slots, Data: make([]int32, batch*queries*slots)}
}

// Shape returns a human-readable shape string.
func (s IndexSet) Shape() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Batch, s.Queries, s.Slots)
}

// Row returns the Slots indices of query q in batch b. The slice aliases s.Data.
func (s IndexSet) Row(b, q int) []int32 {
	off := (b*s.Queries + q) * s.Slots
	return s.Data[off : off+s.Slots]
}

// Validate checks the buffer length and that every index lies in [0, refSize).
func (s IndexSet) Validate(refSize int) error {
	if s.Batch <= 0 || s.Queries <= 0 || s.Slots <= 0 {
		return fmt.Errorf("%w: index set shape %s must be positive", ErrInvalidArgument, s.Shape())
	}
	if want := s.Batch * s.Queries * s.Slots; len(s.Data) != want {
		return &ShapeError{Field: "index set data", Expected: want, Actual: len(s.Data)}
	}
	for i, v := range s.Data {
		if v < 0 || int(v) >= refSize {
			return fmt.Errorf("%w: index %d at position %d outside [0, %d)", ErrInvalidArgument, v, i, refSize)
		}
	}
	return nil
}

// Flatten returns the indices offset by b*refSize, addressing the reference
// points of all batches concatenated into one buffer.
func (s IndexSet) Flatten(refSize int) []int32 {
	out := make([]int32, len(s.Data))
	per := s.Queries * s.Slots
	for i, v := range s.Data {
		out[i] = v + int32(i/per*refSize)
	}
	return out
}

// DistanceSet has the shape of an IndexSet and carries one float32 per slot.
type DistanceSet struct {
	Batch   int
	Queries int
	Slots   int
	Data    []float32
}

// ZeroDistanceSet allocates a zero-filled distance set.
func ZeroDistanceSet(batch, queries, slots int) DistanceSet {
	return DistanceSet{Batch: batch, Queries: queries, Slots: slots, Data: make([]float32, batch*queries*slots)}
}

// Row returns the Slots values of query q in batch b. The slice aliases d.Data.
func (d DistanceSet) Row(b, q int) []float32 {
	off := (b*d.Queries + q) * d.Slots
	return d.Data[off : off+d.Slots]
}

// Matches reports whether d has the same shape as s.
func (d DistanceSet) Matches(s IndexSet) bool {
	return d.Batch == s.Batch && d.Queries == s.Queries && d.Slots == s.Slots &&
		len(d.Data) == len(s.Data)
}

// GroupedSet holds a fixed-size neighborhood of Slots vectors for every (batch, query).
type GroupedSet struct {
	Batch   int
	Queries int
	Slots   int
	Dim     int
	Data    []float32
}

// ZeroGroupedSet allocates a zero-filled grouped set.
func ZeroGroupedSet(batch, queries, slots, dim int) GroupedSet {
	return GroupedSet{
		Batch:   batch,
		Queries: queries,
		Slots:   slots,
		Dim:     dim,
		Data:    make([]float32, batch*queries*slots*dim),
	}
}

// Shape returns a human-readable shape string.
func (g GroupedSet) Shape() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", g.Batch, g.Queries, g.Slots, g.Dim)
}

// Validate checks that the shape is positive and matches the buffer length.
func (g GroupedSet) Validate() error {
	if g.Batch <= 0 || g.Queries <= 0 || g.Slots <= 0 || g.Dim <= 0 {
		return fmt.Errorf("%w: grouped set shape %s must be positive", ErrInvalidArgument, g.Shape())
	}
	if want := g.Batch * g.Queries * g.Slots * g.Dim; len(g.Data) != want {
		return &ShapeError{Field: "grouped set data", Expected: want, Actual: len(g.Data)}
	}
	return nil
}

// At returns the vector in slot s of query q in batch b. The slice aliases g.Data.
func (g GroupedSet) At(b, q, s int) []float32 {
	off := ((b*g.Queries+q)*g.Slots + s) * g.Dim
	return g.Data[off : off+g.Dim]
}

// Neighborhood returns the Slots*Dim values of query q in batch b.
func (g GroupedSet) Neighborhood(b, q int) []float32 {
	n := g.Slots * g.Dim
	off := (b*g.Queries + q) * n
	return g.Data[off : off+n]
}

// Concat joins g and h along the feature axis.
func (g GroupedSet) Concat(h GroupedSet) (GroupedSet, error) {
	if g.Batch != h.Batch || g.Queries != h.Queries || g.Slots != h.Slots {
		return GroupedSet{}, fmt.Errorf("%w: cannot concat %s with %s", ErrInvalidArgument, g.Shape(), h.Shape())
	}
	out := ZeroGroupedSet(g.Batch, g.Queries, g.Slots, g.Dim+h.Dim)
	for b := 0; b < g.Batch; b++ {
		for q := 0; q < g.Queries; q++ {
			for s := 0; s < g.Slots; s++ {
				dst := out.At(b, q, s)
				copy(dst, g.At(b, q, s))
				copy(dst[g.Dim:], h.At(b, q, s))
			}
		}
	}
	return out, nil
}
