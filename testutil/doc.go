// Package testutil provides testing utilities for pointgeo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating point clouds and computing exact
// neighbor sets to check faster paths against.
//
// # Random Clouds
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformCloud(batch, n, 3)   // uniform in [0, 1)^3
//	line := testutil.LineCloud(8)          // x = 0..7 on the x axis
//
// # Exact Search (Ground Truth)
//
//	results := testutil.BruteForceKNN(cloud, dim, query, k)
package testutil
