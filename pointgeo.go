package pointgeo

import (
	"context"
	"time"

	"github.com/hupe1980/pointgeo/config"
	"github.com/hupe1980/pointgeo/distance"
	"github.com/hupe1980/pointgeo/grouping"
	"github.com/hupe1980/pointgeo/interpolate"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/neighbors"
	"github.com/hupe1980/pointgeo/pooling"
	"github.com/hupe1980/pointgeo/sampling"
)

// Engine runs point-set operations with shared settings, logging and metrics.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	return newEngine(options{}, optFns)
}

// NewFromConfig creates an Engine from the engine knobs of cfg. Options are
// applied after the configuration and take precedence.
func NewFromConfig(cfg *config.Config, optFns ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}
	policy, err := neighbors.ParseEmptyPolicy(cfg.EmptyPolicy)
	if err != nil {
		return nil, err
	}
	return newEngine(options{
		workers:      cfg.Workers,
		spatialIndex: cfg.SpatialIndex,
		emptyPolicy:  policy,
		epsilon:      cfg.Epsilon,
	}, optFns)
}

func newEngine(base options, optFns []Option) (*Engine, error) {
	o := applyOptions(base, optFns)
	if o.workers < 0 {
		o.workers = 0
	}
	e := &Engine{
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	e.logger.Debug("engine created",
		"workers", o.workers,
		"spatial_index", o.spatialIndex,
		"empty_policy", o.emptyPolicy.String(),
		"accelerated", distance.Accelerated(),
	)
	return e, nil
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *Logger { return e.logger }

func (e *Engine) neighborOptions() []neighbors.Option {
	return []neighbors.Option{
		neighbors.WithWorkers(e.opts.workers),
		neighbors.WithSpatialIndex(e.opts.spatialIndex),
		neighbors.WithEmptyPolicy(e.opts.emptyPolicy),
	}
}

// FarthestPointSample selects m points per batch by farthest-point sampling,
// starting from index 0.
func (e *Engine) FarthestPointSample(ctx context.Context, points model.PointSet, m int) (model.IndexSet, error) {
	if err := ctx.Err(); err != nil {
		return model.IndexSet{}, err
	}
	start := time.Now()
	sel, err := sampling.FarthestPoint(points, m, sampling.WithWorkers(e.opts.workers))
	e.metrics.RecordSample(points.Size, m, time.Since(start), err)
	e.logger.LogSample(ctx, config.SamplerFarthestPoint, points.Size, m, err)
	return sel, translateError(err)
}

// RandomSample selects m distinct points per batch uniformly at random.
// Batch b uses seed+b.
func (e *Engine) RandomSample(ctx context.Context, points model.PointSet, m int, seed int64) (model.IndexSet, error) {
	if err := ctx.Err(); err != nil {
		return model.IndexSet{}, err
	}
	start := time.Now()
	sel, err := sampling.Random(points, m, seed, sampling.WithWorkers(e.opts.workers))
	e.metrics.RecordSample(points.Size, m, time.Since(start), err)
	e.logger.LogSample(ctx, config.SamplerRandom, points.Size, m, err)
	return sel, translateError(err)
}

// BallQuery finds up to k reference points within radius of every query point.
// See neighbors.BallQuery.
func (e *Engine) BallQuery(ctx context.Context, ref, query model.PointSet, radius float32, k int) (model.IndexSet, []int32, error) {
	if err := ctx.Err(); err != nil {
		return model.IndexSet{}, nil, err
	}
	start := time.Now()
	idx, counts, err := neighbors.BallQuery(ref, query, radius, k, e.neighborOptions()...)
	e.metrics.RecordQuery(QueryBall, query.Batch*query.Size, k, time.Since(start), err)
	e.logger.WithRadius(radius).LogQuery(ctx, QueryBall, query.Batch*query.Size, k, err)
	return idx, counts, translateError(err)
}

// KNN finds the k nearest reference points of every query point.
// See neighbors.KNN.
func (e *Engine) KNN(ctx context.Context, ref, query model.PointSet, k int) (model.IndexSet, model.DistanceSet, error) {
	if err := ctx.Err(); err != nil {
		return model.IndexSet{}, model.DistanceSet{}, err
	}
	start := time.Now()
	idx, dist, err := neighbors.KNN(ref, query, k, e.neighborOptions()...)
	e.metrics.RecordQuery(QueryKNN, query.Batch*query.Size, k, time.Since(start), err)
	e.logger.LogQuery(ctx, QueryKNN, query.Batch*query.Size, k, err)
	return idx, dist, translateError(err)
}

// Group gathers the feature vectors idx names into fixed-size neighborhoods.
func (e *Engine) Group(ctx context.Context, features model.PointSet, idx model.IndexSet) (model.GroupedSet, error) {
	if err := ctx.Err(); err != nil {
		return model.GroupedSet{}, err
	}
	start := time.Now()
	g, err := grouping.Group(features, idx, grouping.WithWorkers(e.opts.workers))
	e.metrics.RecordGroup(idx.Batch*idx.Queries, time.Since(start), err)
	e.logger.LogGroup(ctx, "group", idx.Batch*idx.Queries, idx.Slots, err)
	return g, translateError(err)
}

// Gather extracts the points of a sampler selection.
func (e *Engine) Gather(ctx context.Context, points model.PointSet, sel model.IndexSet) (model.PointSet, error) {
	if err := ctx.Err(); err != nil {
		return model.PointSet{}, err
	}
	start := time.Now()
	out, err := grouping.Gather(points, sel)
	e.metrics.RecordGroup(sel.Batch*sel.Queries, time.Since(start), err)
	e.logger.LogGroup(ctx, "gather", sel.Batch*sel.Queries, 1, err)
	return out, translateError(err)
}

// Interpolate carries sparseFeatures from the sparse points onto the dense
// points by inverse-distance weighting over the three nearest sparse points.
func (e *Engine) Interpolate(ctx context.Context, dense, sparse, sparseFeatures model.PointSet) (model.PointSet, error) {
	return e.propagate(ctx, dense, sparse, sparseFeatures, nil)
}

// Pool reduces every neighborhood of g to one vector.
func (e *Engine) Pool(ctx context.Context, g model.GroupedSet, mode pooling.Mode, opts ...pooling.Option) (model.PointSet, error) {
	if err := ctx.Err(); err != nil {
		return model.PointSet{}, err
	}
	start := time.Now()
	opts = append([]pooling.Option{pooling.WithWorkers(e.opts.workers)}, opts...)
	out, err := pooling.Pool(g, mode, opts...)
	e.metrics.RecordPool(g.Batch*g.Queries, time.Since(start), err)
	e.logger.LogGroup(ctx, mode.String()+" pool", g.Batch*g.Queries, g.Slots, err)
	return out, translateError(err)
}

func (e *Engine) propagate(ctx context.Context, dense, sparse, sparseFeatures model.PointSet, skip *model.PointSet) (model.PointSet, error) {
	if err := ctx.Err(); err != nil {
		return model.PointSet{}, err
	}
	start := time.Now()
	out, err := interpolate.Propagate(dense, sparse, sparseFeatures, skip,
		interpolate.WithEpsilon(e.opts.epsilon),
		interpolate.WithWorkers(e.opts.workers),
		interpolate.WithNeighborOptions(neighbors.WithSpatialIndex(e.opts.spatialIndex)),
	)
	e.metrics.RecordInterpolate(dense.Batch*dense.Size, time.Since(start), err)
	e.logger.LogInterpolate(ctx, dense.Size, sparse.Size, err)
	return out, translateError(err)
}
