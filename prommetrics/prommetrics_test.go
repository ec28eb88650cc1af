package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pointgeo"
	pgtest "github.com/hupe1980/pointgeo/testutil"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.RecordSample(100, 10, time.Millisecond, nil)
	c.RecordQuery(pointgeo.QueryBall, 20, 8, time.Millisecond, nil)
	c.RecordQuery(pointgeo.QueryBall, 20, 8, time.Millisecond, errors.New("boom"))
	c.RecordInterpolate(64, time.Millisecond, nil)

	assert.Equal(t, 10.0, testutil.ToFloat64(c.points.WithLabelValues("sample")))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.points.WithLabelValues("query_ball")))
	assert.Equal(t, 64.0, testutil.ToFloat64(c.points.WithLabelValues("interpolate")))
	assert.Equal(t, 4, testutil.CollectAndCount(c.opLatency, "pointgeo_operation_latency_seconds"))

	// A second collector on the same registry collides.
	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollectorWithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	eng, err := pointgeo.New(pointgeo.WithMetricsCollector(c))
	require.NoError(t, err)

	xyz := pgtest.NewRNG(1).UniformCloud(2, 64, 3)
	_, err = eng.FarthestPointSample(context.Background(), xyz, 8)
	require.NoError(t, err)
	_, _, err = eng.KNN(context.Background(), xyz, xyz, 4)
	require.NoError(t, err)

	assert.Equal(t, 8.0, testutil.ToFloat64(c.points.WithLabelValues("sample")))
	assert.Equal(t, 128.0, testutil.ToFloat64(c.points.WithLabelValues("query_knn")))
}
