package pointgeo

import (
	"sync/atomic"
	"time"
)

// Query kinds passed to MetricsCollector.RecordQuery.
const (
	QueryBall = "ball"
	QueryKNN  = "knn"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSample is called after each sampling call.
	// points is the input size per batch and samples the selected count.
	RecordSample(points, samples int, duration time.Duration, err error)

	// RecordQuery is called after each neighbor search. kind is QueryBall or
	// QueryKNN and queries counts query points over all batches.
	RecordQuery(kind string, queries, k int, duration time.Duration, err error)

	// RecordGroup is called after each grouping or gather step. groups counts
	// neighborhoods over all batches; a gather counts one per selected point.
	RecordGroup(groups int, duration time.Duration, err error)

	// RecordInterpolate is called after each interpolation. points counts dense
	// points over all batches.
	RecordInterpolate(points int, duration time.Duration, err error)

	// RecordPool is called after each pooling step.
	RecordPool(groups int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSample(int, int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordQuery(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGroup(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordInterpolate(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordPool(int, time.Duration, error)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SampleCount       atomic.Int64
	SampleErrors      atomic.Int64
	SamplePoints      atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryPoints       atomic.Int64
	QueryTotalNanos   atomic.Int64
	GroupCount        atomic.Int64
	GroupErrors       atomic.Int64
	GroupNeighborhood atomic.Int64
	InterpolateCount  atomic.Int64
	InterpolateErrors atomic.Int64
	InterpolatePoints atomic.Int64
	PoolCount         atomic.Int64
	PoolErrors        atomic.Int64
}

// RecordSample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSample(points, samples int, duration time.Duration, err error) {
	b.SampleCount.Add(1)
	b.SamplePoints.Add(int64(samples))
	if err != nil {
		b.SampleErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(kind string, queries, k int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryPoints.Add(int64(queries))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordGroup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGroup(groups int, duration time.Duration, err error) {
	b.GroupCount.Add(1)
	b.GroupNeighborhood.Add(int64(groups))
	if err != nil {
		b.GroupErrors.Add(1)
	}
}

// RecordInterpolate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInterpolate(points int, duration time.Duration, err error) {
	b.InterpolateCount.Add(1)
	b.InterpolatePoints.Add(int64(points))
	if err != nil {
		b.InterpolateErrors.Add(1)
	}
}

// RecordPool implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPool(groups int, duration time.Duration, err error) {
	b.PoolCount.Add(1)
	if err != nil {
		b.PoolErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SampleCount:       b.SampleCount.Load(),
		SampleErrors:      b.SampleErrors.Load(),
		SamplePoints:      b.SamplePoints.Load(),
		QueryCount:        b.QueryCount.Load(),
		QueryErrors:       b.QueryErrors.Load(),
		QueryPoints:       b.QueryPoints.Load(),
		QueryAvgNanos:     b.getAvgQueryNanos(),
		GroupCount:        b.GroupCount.Load(),
		GroupErrors:       b.GroupErrors.Load(),
		Neighborhoods:     b.GroupNeighborhood.Load(),
		InterpolateCount:  b.InterpolateCount.Load(),
		InterpolateErrors: b.InterpolateErrors.Load(),
		InterpolatePoints: b.InterpolatePoints.Load(),
		PoolCount:         b.PoolCount.Load(),
		PoolErrors:        b.PoolErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SampleCount       int64
	SampleErrors      int64
	SamplePoints      int64
	QueryCount        int64
	QueryErrors       int64
	QueryPoints       int64
	QueryAvgNanos     int64
	GroupCount        int64
	GroupErrors       int64
	Neighborhoods     int64
	InterpolateCount  int64
	InterpolateErrors int64
	InterpolatePoints int64
	PoolCount         int64
	PoolErrors        int64
}
