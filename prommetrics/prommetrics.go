// Package prommetrics exports engine metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/pointgeo"
)

// Collector implements pointgeo.MetricsCollector on Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	points    *prometheus.CounterVec
	neighbors *prometheus.HistogramVec
}

var _ pointgeo.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics on reg. A nil reg selects
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pointgeo_operation_latency_seconds",
			Help:    "Latency of point-set operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pointgeo_points_total",
			Help: "Points processed, by operation",
		}, []string{"op"}),
		neighbors: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pointgeo_query_neighbors",
			Help:    "Requested neighborhood size per query call",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"kind"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.points, c.neighbors} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSample implements pointgeo.MetricsCollector.
func (c *Collector) RecordSample(points, samples int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("sample", status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.WithLabelValues("sample").Add(float64(samples))
	}
}

// RecordQuery implements pointgeo.MetricsCollector.
func (c *Collector) RecordQuery(kind string, queries, k int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("query_"+kind, status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.WithLabelValues("query_" + kind).Add(float64(queries))
		c.neighbors.WithLabelValues(kind).Observe(float64(k))
	}
}

// RecordGroup implements pointgeo.MetricsCollector.
func (c *Collector) RecordGroup(groups int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("group", status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.WithLabelValues("group").Add(float64(groups))
	}
}

// RecordInterpolate implements pointgeo.MetricsCollector.
func (c *Collector) RecordInterpolate(points int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("interpolate", status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.WithLabelValues("interpolate").Add(float64(points))
	}
}

// RecordPool implements pointgeo.MetricsCollector.
func (c *Collector) RecordPool(groups int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("pool", status(err)).Observe(d.Seconds())
	if err == nil {
		c.points.WithLabelValues("pool").Add(float64(groups))
	}
}
