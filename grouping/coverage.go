package grouping

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"

	"github.com/hupe1980/pointgeo/model"
)

// Coverage returns, per batch, the set of reference indices that appear in at
// least one row of idx.
func Coverage(idx model.IndexSet, refSize int) ([]*roaring.Bitmap, error) {
	if err := idx.Validate(refSize); err != nil {
		return nil, errors.Wrap(err, "coverage")
	}

	per := idx.Queries * idx.Slots
	out := make([]*roaring.Bitmap, idx.Batch)
	for b := 0; b < idx.Batch; b++ {
		rb := roaring.New()
		for _, v := range idx.Data[b*per : (b+1)*per] {
			rb.Add(uint32(v))
		}
		rb.RunOptimize()
		out[b] = rb
	}
	return out, nil
}

// CountedCoverage is Coverage restricted to the first counts[b*Queries+q] slots
// of each row, so ball query padding is not mistaken for a real hit.
func CountedCoverage(idx model.IndexSet, counts []int32, refSize int) ([]*roaring.Bitmap, error) {
	if err := idx.Validate(refSize); err != nil {
		return nil, errors.Wrap(err, "coverage")
	}
	if want := idx.Batch * idx.Queries; len(counts) != want {
		return nil, errors.Wrap(&model.ShapeError{Field: "counts", Expected: want, Actual: len(counts)}, "coverage")
	}

	out := make([]*roaring.Bitmap, idx.Batch)
	for b := 0; b < idx.Batch; b++ {
		rb := roaring.New()
		for q := 0; q < idx.Queries; q++ {
			row := idx.Row(b, q)
			n := min(int(counts[b*idx.Queries+q]), len(row))
			for _, v := range row[:max(n, 0)] {
				rb.Add(uint32(v))
			}
		}
		rb.RunOptimize()
		out[b] = rb
	}
	return out, nil
}

// CoverageRatio returns, per batch, the fraction of the refSize reference
// points covered by idx.
func CoverageRatio(idx model.IndexSet, refSize int) ([]float64, error) {
	bitmaps, err := Coverage(idx, refSize)
	if err != nil {
		return nil, err
	}
	return Ratios(bitmaps, refSize), nil
}

// Ratios converts coverage bitmaps into covered fractions of refSize.
func Ratios(bitmaps []*roaring.Bitmap, refSize int) []float64 {
	out := make([]float64, len(bitmaps))
	for b, rb := range bitmaps {
		out[b] = float64(rb.GetCardinality()) / float64(refSize)
	}
	return out
}
