// Package grouping gathers fixed-size neighborhoods out of point and feature clouds.
//
// Indices are batch-relative: row (b, q) of an IndexSet addresses points of batch b
// only. Group resolves them against the batch-concatenated buffer at offset b*N,
// which is the form IndexSet.Flatten returns.
package grouping
