// Package neighbors finds, for every query point, nearby points of a reference cloud.
//
// Two searches are provided:
//
//   - BallQuery: up to k reference points within a fixed radius, in reference
//     index order, padded to exactly k slots, plus the true hit count per query.
//   - KNN: the k nearest reference points in ascending distance, ties broken by
//     the smaller index, plus their Euclidean distances.
//
// Both scan the reference cloud by default. WithSpatialIndex builds a k-d tree per
// batch and uses it only to shortlist candidates; the final distances, filtering and
// ordering are computed exactly as in the scan, so both paths return identical results.
//
// Work is split over (batch, query) pairs and run on WithWorkers goroutines.
package neighbors
