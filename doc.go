// Package pointgeo provides the geometric primitives of hierarchical point-set
// networks: farthest-point sampling, ball and k-nearest-neighbor queries,
// neighborhood grouping, neighborhood pooling and inverse-distance feature
// interpolation.
//
// The leaf packages (sampling, neighbors, grouping, pooling, interpolate) are pure
// functions over flat, batch-major buffers from package model. Engine composes them
// into the layer operations of PointNet++ style models and adds logging, metrics,
// configuration and cancellation.
//
// # Quick Start
//
//	eng, _ := pointgeo.New(pointgeo.WithWorkers(8))
//
//	// B×N×3 coordinates and B×N×C features, flat and batch-major.
//	xyz, _ := model.NewPointSet(batch, n, 3, coords)
//	feats, _ := model.NewPointSet(batch, n, c, values)
//
//	stage := config.SetAbstraction{NPoint: 128, Radius: 0.2, NSample: 32, UseXYZ: true}
//	out, _ := eng.SetAbstraction(ctx, xyz, &feats, stage, nil)
//	// out.Centroids: B×128×3, out.Features: B×128×(3+C), out.Indices: B×128×32
//
// # Embedding
//
// Trainable layers are not part of this module. SetAbstraction and
// MultiScaleGroup accept an EmbedFunc that runs between grouping and pooling, so
// a model can apply its shared MLP to every grouped vector.
//
// # Layer Schedules
//
// Package config loads layer geometry from YAML; NewFromConfig applies its engine
// knobs (workers, spatial index, empty neighborhood policy, epsilon).
//
// # Determinism
//
// Every operation is deterministic for fixed inputs (and seed, for random
// sampling) regardless of the worker count: outputs are written by index, never by
// completion order.
package pointgeo
