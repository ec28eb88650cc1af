package grouping

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/pointgeo/internal/parallel"
	"github.com/hupe1980/pointgeo/model"
)

type options struct {
	workers int
}

// Option configures a grouping call.
type Option func(*options)

// WithWorkers bounds the number of batches gathered concurrently.
// Values <= 0 select runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers <= 0 {
		o.workers = parallel.DefaultWorkers()
	}
	return o
}

// Group copies, for every (batch, query, slot), the feature vector the index names:
// out.At(b, q, s) equals features.At(b, idx.Row(b, q)[s]).
func Group(features model.PointSet, idx model.IndexSet, opts ...Option) (model.GroupedSet, error) {
	o := applyOptions(opts)
	if err := validate(features, idx); err != nil {
		return model.GroupedSet{}, errors.Wrap(err, "group")
	}

	out := model.ZeroGroupedSet(idx.Batch, idx.Queries, idx.Slots, features.Dim)
	flat := idx.Flatten(features.Size)
	dim := features.Dim
	per := idx.Queries * idx.Slots

	err := parallel.For(idx.Batch, o.workers, func(b int) error {
		for j, g := range flat[b*per : (b+1)*per] {
			dst := (b*per + j) * dim
			src := int(g) * dim
			copy(out.Data[dst:dst+dim], features.Data[src:src+dim])
		}
		return nil
	})
	if err != nil {
		return model.GroupedSet{}, errors.Wrap(err, "group")
	}
	return out, nil
}

// Gather extracts the selected points of a Slots == 1 selection, such as the
// output of a sampler. The result has one point per selection row.
func Gather(points model.PointSet, sel model.IndexSet) (model.PointSet, error) {
	if err := validate(points, sel); err != nil {
		return model.PointSet{}, errors.Wrap(err, "gather")
	}
	if sel.Slots != 1 {
		return model.PointSet{}, errors.Wrap(&model.ShapeError{Field: "selection slots", Expected: 1, Actual: sel.Slots}, "gather")
	}

	out := model.ZeroPointSet(sel.Batch, sel.Queries, points.Dim)
	for b := 0; b < sel.Batch; b++ {
		for q := 0; q < sel.Queries; q++ {
			copy(out.At(b, q), points.At(b, int(sel.Row(b, q)[0])))
		}
	}
	return out, nil
}

// Center returns a copy of grouped with each neighborhood translated so its
// centroid sits at the origin. centroids must hold one point per query with
// the grouped vector width.
func Center(grouped model.GroupedSet, centroids model.PointSet) (model.GroupedSet, error) {
	if err := grouped.Validate(); err != nil {
		return model.GroupedSet{}, errors.Wrap(err, "center")
	}
	if err := centroids.Validate(); err != nil {
		return model.GroupedSet{}, errors.Wrap(err, "center: centroids")
	}
	switch {
	case centroids.Batch != grouped.Batch:
		return model.GroupedSet{}, errors.Wrap(&model.ShapeError{Field: "batch", Expected: grouped.Batch, Actual: centroids.Batch}, "center")
	case centroids.Size != grouped.Queries:
		return model.GroupedSet{}, errors.Wrap(&model.ShapeError{Field: "centroid count", Expected: grouped.Queries, Actual: centroids.Size}, "center")
	case centroids.Dim != grouped.Dim:
		return model.GroupedSet{}, errors.Wrap(&model.ShapeError{Field: "centroid dimension", Expected: grouped.Dim, Actual: centroids.Dim}, "center")
	}

	out := grouped
	out.Data = slices.Clone(grouped.Data)
	for b := 0; b < out.Batch; b++ {
		for q := 0; q < out.Queries; q++ {
			c := centroids.At(b, q)
			for s := 0; s < out.Slots; s++ {
				vek32.Sub_Inplace(out.At(b, q, s), c)
			}
		}
	}
	return out, nil
}

func validate(points model.PointSet, idx model.IndexSet) error {
	if err := points.Validate(); err != nil {
		return err
	}
	if idx.Batch != points.Batch {
		return &model.ShapeError{Field: "batch", Expected: points.Batch, Actual: idx.Batch}
	}
	return idx.Validate(points.Size)
}
