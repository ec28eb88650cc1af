package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pointgeo/distance"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/testutil"
)

func assertDistinctInRange(t *testing.T, idx model.IndexSet, n int) {
	t.Helper()
	for b := 0; b < idx.Batch; b++ {
		seen := make(map[int32]bool, idx.Queries)
		for q := 0; q < idx.Queries; q++ {
			v := idx.Row(b, q)[0]
			assert.GreaterOrEqual(t, v, int32(0))
			assert.Less(t, v, int32(n))
			assert.False(t, seen[v], "index %d repeated in batch %d", v, b)
			seen[v] = true
		}
	}
}

func TestFarthestPoint(t *testing.T) {
	rng := testutil.NewRNG(42)
	points := rng.UniformCloud(3, 200, 3)

	idx, err := FarthestPoint(points, 32)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Batch)
	assert.Equal(t, 32, idx.Queries)
	assert.Equal(t, 1, idx.Slots)
	assertDistinctInRange(t, idx, points.Size)

	for b := 0; b < points.Batch; b++ {
		assert.Equal(t, int32(0), idx.Row(b, 0)[0], "default start is the first point")
	}
}

func TestFarthestPointLine(t *testing.T) {
	points := testutil.LineCloud(8)

	idx, err := FarthestPoint(points, 3)
	require.NoError(t, err)
	// 0, then 7; 3 and 4 are both 3 away from their nearest pick, smaller index wins.
	assert.Equal(t, []int32{0, 7, 3}, idx.Data)

	idx, err = FarthestPoint(points, 2, WithStart(5))
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 0}, idx.Data)
}

func TestFarthestPointAll(t *testing.T) {
	points := testutil.GridCloud(3)

	idx, err := FarthestPoint(points, points.Size)
	require.NoError(t, err)
	assertDistinctInRange(t, idx, points.Size)
}

func TestFarthestPointDuplicates(t *testing.T) {
	// Every point coincides: distances collapse to zero but indices stay distinct.
	points := model.ZeroPointSet(1, 10, 3)

	idx, err := FarthestPoint(points, 10)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, idx.Data)
}

func TestFarthestPointDeterministic(t *testing.T) {
	rng := testutil.NewRNG(7)
	points := rng.UniformCloud(4, 300, 3)

	first, err := FarthestPoint(points, 50, WithStart(11), WithWorkers(4))
	require.NoError(t, err)
	for range_i := 0; range_i < 3; range_i++ {
		again, err := FarthestPoint(points, 50, WithStart(11), WithWorkers(1))
		require.NoError(t, err)
		assert.Equal(t, first.Data, again.Data)
	}
}

func TestFarthestPointSpread(t *testing.T) {
	rng := testutil.NewRNG(3)
	points := rng.UniformCloud(1, 500, 3)

	fps, err := FarthestPoint(points, 16)
	require.NoError(t, err)
	rnd, err := Random(points, 16, 3)
	require.NoError(t, err)

	// Greedy FPS maximizes the minimum pairwise distance far better than chance.
	assert.Greater(t, minPairwise(points, fps), minPairwise(points, rnd))
}

func minPairwise(points model.PointSet, idx model.IndexSet) float32 {
	best := float32(1e30)
	for i := 0; i < idx.Queries; i++ {
		for j := i + 1; j < idx.Queries; j++ {
			d := distance.Euclidean(points.At(0, int(idx.Data[i])), points.At(0, int(idx.Data[j])))
			best = min(best, d)
		}
	}
	return best
}

func TestFarthestPointErrors(t *testing.T) {
	points := testutil.LineCloud(4)

	tests := []struct {
		name string
		m    int
		opts []Option
	}{
		{"TooMany", 5, nil},
		{"Zero", 0, nil},
		{"Negative", -1, nil},
		{"StartOutOfRange", 2, []Option{WithStart(4)}},
		{"StartNegative", 2, []Option{WithStart(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FarthestPoint(points, tt.m, tt.opts...)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
		})
	}

	_, err := FarthestPoint(model.PointSet{Batch: 1, Size: 0, Dim: 3}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestRandom(t *testing.T) {
	rng := testutil.NewRNG(1)
	points := rng.UniformCloud(2, 64, 3)

	idx, err := Random(points, 64, 99)
	require.NoError(t, err)
	assertDistinctInRange(t, idx, points.Size)

	again, err := Random(points, 64, 99)
	require.NoError(t, err)
	assert.Equal(t, idx.Data, again.Data)

	other, err := Random(points, 64, 100)
	require.NoError(t, err)
	assert.NotEqual(t, idx.Data, other.Data)

	_, err = Random(points, 65, 1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
