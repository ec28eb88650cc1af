// Package distance provides point-to-point distance kernels.
//
// Both kernels are backed by vek32, which uses AVX2/FMA kernels on amd64 when
// the CPU supports them and portable Go otherwise. SquaredEuclidean is used where
// distances are compared or accumulated rather than reported.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	d2 := distance.SquaredEuclidean(a, b)
package distance
