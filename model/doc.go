// Package model defines the array types exchanged by pointgeo components.
//
// # Layout
//
// Every type is a flat, batch-major buffer plus its shape:
//
//   - PointSet: Batch × Size × Dim float32 (coordinates and/or features)
//   - IndexSet: Batch × Queries × Slots int32 (batch-relative reference indices)
//   - DistanceSet: Batch × Queries × Slots float32 (distances or weights)
//   - GroupedSet: Batch × Queries × Slots × Dim float32 (grouped neighborhoods)
//
// # Addressing
//
// Indices stored in an IndexSet are relative to their batch, i.e. in [0, N) where
// N is the reference PointSet's Size. Consumers that want a single gather over the
// batch-concatenated buffer use IndexSet.Flatten, which adds the b*N offset.
//
// Inputs are never mutated by pointgeo; every result owns fresh memory.
package model
