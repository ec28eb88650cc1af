// Package interpolate propagates features from a sparse point set to a dense one.
//
// Every dense point takes the inverse-distance-weighted average of the features of
// its three nearest sparse points (fewer when the sparse set is smaller). Distances
// are clamped below by an epsilon, so a dense point coinciding with a sparse point
// takes, up to rounding, that point's feature.
package interpolate
