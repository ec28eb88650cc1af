package pointgeo

import (
	"context"
	"fmt"
	"time"

	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/pointgeo/config"
	"github.com/hupe1980/pointgeo/grouping"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/pooling"
)

// Stage identifies the layer an EmbedFunc is called for.
type Stage struct {
	Name string
	// Scale is the radius index of a multi-scale stage, 0 otherwise.
	Scale int
}

func (s Stage) String() string {
	if s.Name == "" {
		return fmt.Sprintf("scale %d", s.Scale)
	}
	return fmt.Sprintf("%s/%d", s.Name, s.Scale)
}

// EmbedFunc transforms grouped vectors between grouping and pooling, typically
// with a shared per-vector MLP. It may change Dim but must keep Batch, Queries
// and Slots.
type EmbedFunc func(ctx context.Context, stage Stage, grouped model.GroupedSet) (model.GroupedSet, error)

// PointEmbedFunc transforms every input point before grouping, typically with a
// shared per-point MLP. It may change Dim but must keep Batch and Size.
type PointEmbedFunc func(ctx context.Context, stage Stage, points model.PointSet) (model.PointSet, error)

// LayerOption configures a SetAbstraction or MultiScaleGroup call.
type LayerOption func(*layerOptions)

type layerOptions struct {
	pointEmbed PointEmbedFunc
}

// WithPointEmbed embeds the input points once before grouping, so every
// neighborhood gathers already embedded vectors instead of embedding each
// grouped copy. The input is xyz followed by the features when UseXYZ is set,
// the features alone otherwise, or xyz when there are no features.
//
// For SetAbstraction the embedded vectors take the place of the input
// features and UseXYZ still appends centered coordinates after grouping,
// except for group-all stages. For MultiScaleGroup the function is called once
// per scale and the embedded vectors are grouped as they are.
func WithPointEmbed(fn PointEmbedFunc) LayerOption {
	return func(o *layerOptions) {
		o.pointEmbed = fn
	}
}

func applyLayerOptions(optFns []LayerOption) layerOptions {
	var o layerOptions
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Abstraction is the result of sampling and grouping.
type Abstraction struct {
	// Centroids holds the sampled points, B×M×3.
	Centroids model.PointSet
	// Samples holds the input index of every centroid, B×M×1. It is empty for
	// group-all stages, whose centroid is not an input point.
	Samples model.IndexSet
	// Indices holds the neighborhood of every centroid, B×M×K.
	Indices model.IndexSet
	// Counts holds the real neighbor count per centroid for ball queries, nil otherwise.
	Counts []int32
	// GroupedXYZ holds the neighbor coordinates relative to their centroid.
	GroupedXYZ model.GroupedSet
	// Grouped holds the neighborhood features: centered coordinates followed by
	// input features when UseXYZ is set, the input features alone otherwise, or
	// GroupedXYZ when there are no input features.
	Grouped model.GroupedSet
	// RefSize is the number of input points per batch.
	RefSize int
}

// Coverage returns, per batch, the fraction of input points that belong to at
// least one neighborhood. Ball query padding is not counted.
func (a *Abstraction) Coverage() ([]float64, error) {
	if a.Counts == nil {
		return grouping.CoverageRatio(a.Indices, a.RefSize)
	}
	bitmaps, err := grouping.CountedCoverage(a.Indices, a.Counts, a.RefSize)
	if err != nil {
		return nil, err
	}
	return grouping.Ratios(bitmaps, a.RefSize), nil
}

// LayerOutput is the result of a set abstraction or multi-scale stage.
type LayerOutput struct {
	Centroids model.PointSet
	// Samples holds the input index of every centroid, B×M×1; empty for
	// group-all stages.
	Samples  model.IndexSet
	Features model.PointSet
	// Indices holds the neighborhoods; for multi-scale stages, those of the last scale.
	Indices model.IndexSet
}

// SampleAndGroup samples cfg.NPoint centroids from xyz, finds a neighborhood of
// cfg.NSample points around each (ball query, or kNN when cfg.KNN is set) and
// groups coordinates and features. features may be nil.
func (e *Engine) SampleAndGroup(ctx context.Context, xyz model.PointSet, features *model.PointSet, cfg config.SetAbstraction) (*Abstraction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}
	if cfg.GroupAll {
		return e.SampleAndGroupAll(ctx, xyz, features, cfg.UseXYZ)
	}
	if err := validateInputs(xyz, features); err != nil {
		return nil, err
	}

	sel, err := e.sample(ctx, xyz, cfg.Sampler, cfg.NPoint, cfg.Seed)
	if err != nil {
		return nil, err
	}
	centroids, err := e.Gather(ctx, xyz, sel)
	if err != nil {
		return nil, err
	}

	a := &Abstraction{Centroids: centroids, Samples: sel, RefSize: xyz.Size}
	if cfg.KNN {
		a.Indices, _, err = e.KNN(ctx, xyz, centroids, cfg.NSample)
	} else {
		a.Indices, a.Counts, err = e.BallQuery(ctx, xyz, centroids, cfg.Radius, cfg.NSample)
	}
	if err != nil {
		return nil, err
	}

	if err := e.groupAround(ctx, a, xyz, features, cfg.UseXYZ, false); err != nil {
		return nil, err
	}
	return a, nil
}

// SampleAndGroupAll groups every point of a batch under a single centroid at the
// origin. Coordinates are not centered.
func (e *Engine) SampleAndGroupAll(ctx context.Context, xyz model.PointSet, features *model.PointSet, useXYZ bool) (*Abstraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateInputs(xyz, features); err != nil {
		return nil, err
	}

	start := time.Now()
	n := xyz.Size
	a := &Abstraction{
		Centroids: model.ZeroPointSet(xyz.Batch, 1, xyz.Dim),
		Indices:   model.ZeroIndexSet(xyz.Batch, 1, n),
		Counts:    make([]int32, xyz.Batch),
		GroupedXYZ: model.GroupedSet{
			Batch: xyz.Batch, Queries: 1, Slots: n, Dim: xyz.Dim,
			Data: xyz.Clone().Data,
		},
		RefSize: n,
	}
	for b := 0; b < xyz.Batch; b++ {
		row := a.Indices.Row(b, 0)
		for i := range row {
			row[i] = int32(i)
		}
		a.Counts[b] = int32(n)
	}

	switch {
	case features == nil:
		a.Grouped = a.GroupedXYZ
	case useXYZ:
		all, err := xyz.Concat(*features)
		if err != nil {
			return nil, translateError(err)
		}
		a.Grouped = model.GroupedSet{Batch: xyz.Batch, Queries: 1, Slots: n, Dim: all.Dim, Data: all.Data}
	default:
		a.Grouped = model.GroupedSet{Batch: xyz.Batch, Queries: 1, Slots: n, Dim: features.Dim, Data: features.Clone().Data}
	}
	e.metrics.RecordGroup(xyz.Batch, time.Since(start), nil)
	e.logger.LogGroup(ctx, "group all", xyz.Batch, n, nil)
	return a, nil
}

// SetAbstraction runs one sample, group, embed and pool stage. embed may be nil.
// WithPointEmbed moves the embedding in front of grouping.
func (e *Engine) SetAbstraction(ctx context.Context, xyz model.PointSet, features *model.PointSet, cfg config.SetAbstraction, embed EmbedFunc, optFns ...LayerOption) (*LayerOutput, error) {
	o := applyLayerOptions(optFns)
	stage := Stage{Name: cfg.Name}

	if o.pointEmbed != nil {
		if err := cfg.Validate(); err != nil {
			return nil, translateError(err)
		}
		if err := validateInputs(xyz, features); err != nil {
			return nil, err
		}
		embedded, err := e.embedPoints(ctx, stage, xyz, features, cfg.UseXYZ, o.pointEmbed)
		if err != nil {
			return nil, err
		}
		features = &embedded
		if cfg.GroupAll {
			cfg.UseXYZ = false
		}
	}

	a, err := e.SampleAndGroup(ctx, xyz, features, cfg)
	if err != nil {
		return nil, err
	}

	grouped, err := e.embed(ctx, stage, a.Grouped, embed)
	if err != nil {
		return nil, err
	}

	pooled, err := e.Pool(ctx, grouped, cfg.PoolingMode(),
		pooling.WithOffsets(a.GroupedXYZ),
		pooling.WithDecay(cfg.Decay),
	)
	if err != nil {
		return nil, err
	}
	return &LayerOutput{Centroids: a.Centroids, Samples: a.Samples, Features: pooled, Indices: a.Indices}, nil
}

// MultiScaleGroup samples cfg.NPoint centroids once, then for every
// (radius, nsample) scale groups a ball neighborhood, embeds it and max-pools
// it. The pooled features of all scales are concatenated in scale order.
//
// Grouped vectors hold the input features followed by the centered
// coordinates when UseXYZ is set. With WithPointEmbed or cfg.CenterFeatures
// the per-point vectors are grouped as they are instead, and with
// cfg.CenterFeatures every pooled vector has its centroid's own vector
// subtracted.
func (e *Engine) MultiScaleGroup(ctx context.Context, xyz model.PointSet, features *model.PointSet, cfg config.MultiScale, embed EmbedFunc, optFns ...LayerOption) (*LayerOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}
	if err := validateInputs(xyz, features); err != nil {
		return nil, err
	}
	o := applyLayerOptions(optFns)
	pointFirst := o.pointEmbed != nil || cfg.CenterFeatures

	sel, err := e.sample(ctx, xyz, cfg.Sampler, cfg.NPoint, cfg.Seed)
	if err != nil {
		return nil, err
	}
	centroids, err := e.Gather(ctx, xyz, sel)
	if err != nil {
		return nil, err
	}

	out := &LayerOutput{Centroids: centroids, Samples: sel}
	for scale, radius := range cfg.Radii {
		stage := Stage{Name: cfg.Name, Scale: scale}

		var points model.PointSet
		if pointFirst {
			if points, err = e.embedPoints(ctx, stage, xyz, features, cfg.UseXYZ, o.pointEmbed); err != nil {
				return nil, err
			}
		}

		a := &Abstraction{Centroids: centroids, Samples: sel, RefSize: xyz.Size}
		a.Indices, a.Counts, err = e.BallQuery(ctx, xyz, centroids, radius, cfg.NSamples[scale])
		if err != nil {
			return nil, err
		}
		if pointFirst {
			a.Grouped, err = e.Group(ctx, points, a.Indices)
		} else {
			err = e.groupAround(ctx, a, xyz, features, cfg.UseXYZ, true)
		}
		if err != nil {
			return nil, err
		}

		grouped, err := e.embed(ctx, stage, a.Grouped, embed)
		if err != nil {
			return nil, err
		}
		pooled, err := e.Pool(ctx, grouped, pooling.ModeMax)
		if err != nil {
			return nil, err
		}
		if cfg.CenterFeatures {
			if err := e.centerPooled(ctx, pooled, points, sel); err != nil {
				return nil, err
			}
		}

		if scale == 0 {
			out.Features = pooled
		} else if out.Features, err = out.Features.Concat(pooled); err != nil {
			return nil, translateError(err)
		}
		out.Indices = a.Indices
	}
	return out, nil
}

// PropagateFeatures interpolates sparseFeatures onto the dense points. When
// cfg.Skip is set and denseFeatures is non-nil, the dense features are appended
// after the interpolated ones.
func (e *Engine) PropagateFeatures(ctx context.Context, dense, sparse model.PointSet, denseFeatures *model.PointSet, sparseFeatures model.PointSet, cfg config.FeaturePropagation) (model.PointSet, error) {
	var skip *model.PointSet
	if cfg.Skip {
		skip = denseFeatures
	}
	return e.propagate(ctx, dense, sparse, sparseFeatures, skip)
}

func (e *Engine) sample(ctx context.Context, xyz model.PointSet, sampler string, m int, seed int64) (model.IndexSet, error) {
	if sampler == config.SamplerRandom {
		return e.RandomSample(ctx, xyz, m, seed)
	}
	return e.FarthestPointSample(ctx, xyz, m)
}

// groupAround fills the grouped sets of a from its centroids and indices.
// With useXYZ the centered coordinates come first, or last when featuresFirst
// is set.
func (e *Engine) groupAround(ctx context.Context, a *Abstraction, xyz model.PointSet, features *model.PointSet, useXYZ, featuresFirst bool) error {
	groupedXYZ, err := e.Group(ctx, xyz, a.Indices)
	if err != nil {
		return err
	}
	if a.GroupedXYZ, err = grouping.Center(groupedXYZ, a.Centroids); err != nil {
		return translateError(err)
	}

	if features == nil {
		a.Grouped = a.GroupedXYZ
		return nil
	}
	groupedFeatures, err := e.Group(ctx, *features, a.Indices)
	if err != nil {
		return err
	}
	if !useXYZ {
		a.Grouped = groupedFeatures
		return nil
	}
	if featuresFirst {
		a.Grouped, err = groupedFeatures.Concat(a.GroupedXYZ)
	} else {
		a.Grouped, err = a.GroupedXYZ.Concat(groupedFeatures)
	}
	return translateError(err)
}

// embedPoints composes the per-point input of a stage and runs fn over it.
// A nil fn returns the composed input.
func (e *Engine) embedPoints(ctx context.Context, stage Stage, xyz model.PointSet, features *model.PointSet, useXYZ bool, fn PointEmbedFunc) (model.PointSet, error) {
	points := xyz
	switch {
	case features != nil && useXYZ:
		all, err := xyz.Concat(*features)
		if err != nil {
			return model.PointSet{}, translateError(err)
		}
		points = all
	case features != nil:
		points = *features
	}
	if fn == nil {
		return points, nil
	}
	if err := ctx.Err(); err != nil {
		return model.PointSet{}, err
	}

	out, err := fn(ctx, stage, points)
	if err != nil {
		e.logger.WithStage(stage).ErrorContext(ctx, "point embed failed", "error", err)
		return model.PointSet{}, &ErrEmbed{Stage: stage, cause: err}
	}
	if err := out.Validate(); err != nil {
		return model.PointSet{}, &ErrEmbed{Stage: stage, cause: err}
	}
	if out.Batch != points.Batch || out.Size != points.Size {
		return model.PointSet{}, &ErrEmbed{Stage: stage, cause: fmt.Errorf("%w: point embedding changed shape %s to %s",
			ErrInvalidArgument, points.Shape(), out.Shape())}
	}
	return out, nil
}

// centerPooled subtracts every centroid's own point vector from its pooled
// vector in place.
func (e *Engine) centerPooled(ctx context.Context, pooled, points model.PointSet, sel model.IndexSet) error {
	own, err := e.Gather(ctx, points, sel)
	if err != nil {
		return err
	}
	if own.Dim != pooled.Dim {
		return &ErrDimensionMismatch{Field: "centered feature dimension", Expected: own.Dim, Actual: pooled.Dim}
	}
	vek32.Sub_Inplace(pooled.Data, own.Data)
	return nil
}

func (e *Engine) embed(ctx context.Context, stage Stage, g model.GroupedSet, fn EmbedFunc) (model.GroupedSet, error) {
	if fn == nil {
		return g, nil
	}
	if err := ctx.Err(); err != nil {
		return model.GroupedSet{}, err
	}
	out, err := fn(ctx, stage, g)
	if err != nil {
		e.logger.WithStage(stage).ErrorContext(ctx, "embed failed", "error", err)
		return model.GroupedSet{}, &ErrEmbed{Stage: stage, cause: err}
	}
	if err := out.Validate(); err != nil {
		return model.GroupedSet{}, &ErrEmbed{Stage: stage, cause: err}
	}
	if out.Batch != g.Batch || out.Queries != g.Queries || out.Slots != g.Slots {
		return model.GroupedSet{}, &ErrEmbed{Stage: stage, cause: fmt.Errorf("%w: embedding changed shape %s to %s",
			ErrInvalidArgument, g.Shape(), out.Shape())}
	}
	return out, nil
}

func validateInputs(xyz model.PointSet, features *model.PointSet) error {
	if err := xyz.Validate(); err != nil {
		return translateError(err)
	}
	if features == nil {
		return nil
	}
	if err := features.Validate(); err != nil {
		return translateError(err)
	}
	if features.Batch != xyz.Batch {
		return &ErrDimensionMismatch{Field: "feature batch", Expected: xyz.Batch, Actual: features.Batch}
	}
	if features.Size != xyz.Size {
		return &ErrDimensionMismatch{Field: "feature count", Expected: xyz.Size, Actual: features.Size}
	}
	return nil
}
