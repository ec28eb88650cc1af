package distance

import (
	"runtime"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sys/cpu"
)

// Euclidean returns the L2 distance between a and b.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float32) float32 {
	return vek32.Distance(a, b)
}

// SquaredEuclidean returns the squared L2 distance between a and b.
// Assumes vectors are the same length (caller's responsibility).
func SquaredEuclidean(a, b []float32) float32 {
	d := vek32.Distance(a, b)
	return d * d
}

// Accelerated reports whether the SIMD kernels are used on this machine.
func Accelerated() bool {
	return runtime.GOARCH == "amd64" && cpu.X86.HasAVX2 && cpu.X86.HasFMA
}
