// Package sampling selects fixed-size subsets of point clouds.
//
// FarthestPoint greedily picks the point farthest from everything selected so far,
// which spreads the subset over the cloud. Random draws a uniform subset and is
// cheaper when coverage does not matter.
//
// Both return an IndexSet with Slots == 1: one row per selected point, holding its
// index into the input cloud. Batches are sampled independently and in parallel.
package sampling
