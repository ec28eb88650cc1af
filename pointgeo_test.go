package pointgeo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pointgeo/config"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/neighbors"
	"github.com/hupe1980/pointgeo/pooling"
	"github.com/hupe1980/pointgeo/testutil"
)

func newTestEngine(t *testing.T, optFns ...Option) *Engine {
	t.Helper()
	eng, err := New(optFns...)
	require.NoError(t, err)
	return eng
}

func TestEngineLine(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	eng := newTestEngine(t, WithMetricsCollector(metrics))

	line := testutil.LineCloud(8)

	t.Run("FarthestPointSample", func(t *testing.T) {
		sel, err := eng.FarthestPointSample(ctx, line, 3)
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 7, 3}, sel.Data)

		centroids, err := eng.Gather(ctx, line, sel)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 0, 7, 0, 0, 3, 0, 0}, centroids.Data)
	})

	t.Run("KNN", func(t *testing.T) {
		query, err := model.NewPointSet(1, 1, 3, []float32{3.5, 0, 0})
		require.NoError(t, err)
		idx, dist, err := eng.KNN(ctx, line, query, 3)
		require.NoError(t, err)
		assert.Equal(t, []int32{3, 4, 2}, idx.Data)
		assert.InDeltaSlice(t, []float32{0.5, 0.5, 1.5}, dist.Data, 1e-6)
	})

	t.Run("Interpolate", func(t *testing.T) {
		dense, err := model.NewPointSet(1, 1, 3, []float32{3.5, 0, 0})
		require.NoError(t, err)
		out, err := eng.Interpolate(ctx, dense, line, testutil.LineFeatures(8))
		require.NoError(t, err)
		assert.InDelta(t, 46.0/14.0, out.Data[0], 1e-5)
	})

	t.Run("BallQueryGroupPool", func(t *testing.T) {
		query, err := model.NewPointSet(1, 1, 3, []float32{3, 0, 0})
		require.NoError(t, err)
		idx, counts, err := eng.BallQuery(ctx, line, query, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, []int32{2, 3, 4, 2}, idx.Data)
		assert.Equal(t, []int32{3}, counts)

		g, err := eng.Group(ctx, testutil.LineFeatures(8), idx)
		require.NoError(t, err)
		pooled, err := eng.Pool(ctx, g, pooling.ModeAvg, pooling.WithCounts(counts))
		require.NoError(t, err)
		assert.InDelta(t, 3, pooled.Data[0], 1e-6)
	})

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SampleCount)
	assert.Equal(t, int64(3), stats.SamplePoints)
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(1), stats.InterpolateCount)
	// Gather of three centroids and one grouped ball.
	assert.Equal(t, int64(2), stats.GroupCount)
	assert.Equal(t, int64(4), stats.Neighborhoods)
	assert.Equal(t, int64(1), stats.PoolCount)
	assert.Zero(t, stats.QueryErrors)
}

func TestEngineErrors(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	eng := newTestEngine(t, WithMetricsCollector(metrics))

	ref := testutil.LineCloud(4)
	flat := model.ZeroPointSet(1, 2, 2)

	_, _, err := eng.BallQuery(ctx, ref, flat, 1, 2)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotNil(t, errors.Unwrap(err))

	_, err = eng.FarthestPointSample(ctx, ref, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = eng.KNN(ctx, ref, ref, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, int64(1), metrics.GetStats().SampleErrors)
	assert.Equal(t, int64(2), metrics.GetStats().QueryErrors)
}

func TestEngineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newTestEngine(t)
	xyz := testutil.NewRNG(1).UniformCloud(1, 32, 3)

	_, err := eng.FarthestPointSample(ctx, xyz, 4)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = eng.KNN(ctx, xyz, xyz, 4)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = eng.SetAbstraction(ctx, xyz, nil, config.SetAbstraction{NPoint: 4, Radius: 0.2, NSample: 4}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = eng.SampleAndGroupAll(ctx, xyz, nil, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	eng, err := NewFromConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, neighbors.PadNearest, eng.opts.emptyPolicy)

	cfg := &config.Config{Workers: 2, SpatialIndex: true, EmptyPolicy: "query_index", Epsilon: 1e-6}
	eng, err = NewFromConfig(cfg, WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, 3, eng.opts.workers)
	assert.True(t, eng.opts.spatialIndex)
	assert.Equal(t, neighbors.PadQueryIndex, eng.opts.emptyPolicy)
	assert.InDelta(t, 1e-6, eng.opts.epsilon, 1e-12)

	_, err = NewFromConfig(&config.Config{EmptyPolicy: "zero"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	eng, err = NewFromConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, eng.Logger())
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	eng := newTestEngine(t, WithLogger(logger))
	assert.Contains(t, buf.String(), `"msg":"engine created"`)

	ctx := context.Background()
	xyz := testutil.LineCloud(8)
	_, err := eng.FarthestPointSample(ctx, xyz, 2)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"sample completed"`)
	assert.Contains(t, buf.String(), `"method":"fps"`)

	_, _, err = eng.BallQuery(ctx, xyz, xyz, -1, 2)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"neighbor query failed"`)
	assert.Contains(t, buf.String(), `"radius":-1`)

	buf.Reset()
	quiet := newTestEngine(t, WithLogger(nil))
	_, err = quiet.FarthestPointSample(ctx, xyz, 2)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil))
	logger.WithK(8).WithBatch(2).WithStage(Stage{Name: "sa1", Scale: 1}).Info("stage")
	out := buf.String()
	assert.Contains(t, out, "k=8")
	assert.Contains(t, out, "batch=2")
	assert.Contains(t, out, "stage=sa1")
	assert.Contains(t, out, "scale=1")

	assert.NotNil(t, NewJSONLogger(slog.LevelInfo))
	assert.NotNil(t, NewTextLogger(slog.LevelInfo))
	assert.NotNil(t, NewLogger(nil))
}
