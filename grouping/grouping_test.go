package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/neighbors"
	"github.com/hupe1980/pointgeo/testutil"
)

func TestGroup(t *testing.T) {
	// Two batches of three 2-d features; batch 1 values are offset by 100.
	features, err := model.NewPointSet(2, 3, 2, []float32{
		0, 1, 10, 11, 20, 21,
		100, 101, 110, 111, 120, 121,
	})
	require.NoError(t, err)
	idx, err := model.NewIndexSet(2, 1, 3, []int32{2, 0, 0, 1, 1, 2})
	require.NoError(t, err)

	out, err := Group(features, idx, WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, "(2, 1, 3, 2)", out.Shape())
	assert.Equal(t, []float32{20, 21, 0, 1, 0, 1}, out.Neighborhood(0, 0))
	// Batch-relative index 1 of batch 1 resolves to flattened position 4.
	assert.Equal(t, []float32{110, 111, 110, 111, 120, 121}, out.Neighborhood(1, 0))
}

func TestGroupMatchesDefinition(t *testing.T) {
	rng := testutil.NewRNG(3)
	points := rng.UniformCloud(3, 64, 3)
	query := rng.UniformCloud(3, 10, 3)

	idx, _, err := neighbors.BallQuery(points, query, 0.3, 8)
	require.NoError(t, err)
	out, err := Group(points, idx)
	require.NoError(t, err)

	for b := 0; b < idx.Batch; b++ {
		for q := 0; q < idx.Queries; q++ {
			for s, i := range idx.Row(b, q) {
				assert.Equal(t, points.At(b, int(i)), out.At(b, q, s))
			}
		}
	}
}

func TestGather(t *testing.T) {
	points := testutil.LineCloud(6)
	sel, err := model.NewIndexSet(1, 2, 1, []int32{4, 1})
	require.NoError(t, err)

	out, err := Gather(points, sel)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0, 0, 1, 0, 0}, out.Data)

	wide := model.ZeroIndexSet(1, 2, 2)
	_, err = Gather(points, wide)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestCenter(t *testing.T) {
	grouped := model.ZeroGroupedSet(1, 1, 2, 3)
	copy(grouped.Data, []float32{1, 2, 3, 4, 5, 6})
	centroids, err := model.NewPointSet(1, 1, 3, []float32{1, 1, 1})
	require.NoError(t, err)

	out, err := Center(grouped, centroids)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, out.Data)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, grouped.Data, "input must not change")

	_, err = Center(grouped, model.ZeroPointSet(1, 2, 3))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = Center(grouped, model.ZeroPointSet(1, 1, 2))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestGroupErrors(t *testing.T) {
	features := testutil.LineCloud(4)

	tests := []struct {
		name string
		idx  model.IndexSet
	}{
		{"OutOfRange", model.IndexSet{Batch: 1, Queries: 1, Slots: 2, Data: []int32{0, 4}}},
		{"Negative", model.IndexSet{Batch: 1, Queries: 1, Slots: 1, Data: []int32{-1}}},
		{"BatchMismatch", model.ZeroIndexSet(2, 1, 1)},
		{"ShortBuffer", model.IndexSet{Batch: 1, Queries: 2, Slots: 2, Data: []int32{0}}},
		{"Empty", model.IndexSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Group(features, tt.idx)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
		})
	}
}

func TestCoverage(t *testing.T) {
	idx, err := model.NewIndexSet(2, 2, 2, []int32{0, 0, 2, 3, 1, 1, 1, 1})
	require.NoError(t, err)

	bitmaps, err := Coverage(idx, 4)
	require.NoError(t, err)
	require.Len(t, bitmaps, 2)
	assert.Equal(t, []uint32{0, 2, 3}, bitmaps[0].ToArray())
	assert.Equal(t, []uint32{1}, bitmaps[1].ToArray())

	ratios, err := CoverageRatio(idx, 4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, ratios, 1e-12)

	// Only the first hit of the second row is real.
	counted, err := CountedCoverage(idx, []int32{2, 1, 0, 1}, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2}, counted[0].ToArray())
	assert.Equal(t, []uint32{1}, counted[1].ToArray())

	_, err = CountedCoverage(idx, []int32{1}, 4)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = Coverage(idx, 3)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
