package pointgeo

import (
	"log/slog"

	"github.com/hupe1980/pointgeo/interpolate"
	"github.com/hupe1980/pointgeo/neighbors"
)

type options struct {
	workers          int
	spatialIndex     bool
	emptyPolicy      neighbors.EmptyPolicy
	epsilon          float32
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithWorkers bounds the goroutines each operation uses.
// Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSpatialIndex builds a k-d tree per batch to shortlist neighbor
// candidates. Results are identical to the brute-force scan; the tree pays off
// for large reference clouds with small radii or k.
func WithSpatialIndex(enabled bool) Option {
	return func(o *options) {
		o.spatialIndex = enabled
	}
}

// WithEmptyPolicy sets how ball queries fill neighborhoods without any point
// inside the radius. Default neighbors.PadNearest.
func WithEmptyPolicy(p neighbors.EmptyPolicy) Option {
	return func(o *options) {
		o.emptyPolicy = p
	}
}

// WithEpsilon sets the distance clamp of feature interpolation.
// Values <= 0 select interpolate.DefaultEpsilon.
func WithEpsilon(eps float32) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pointgeo.BasicMetricsCollector{}
//	eng, _ := pointgeo.New(pointgeo.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pointgeo.NewJSONLogger(slog.LevelDebug)
//	eng, _ := pointgeo.New(pointgeo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(o options, optFns []Option) options {
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if !(o.epsilon > 0) {
		o.epsilon = interpolate.DefaultEpsilon
	}
	return o
}
