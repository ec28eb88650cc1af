// Package config describes the geometry of hierarchical point-set layers in YAML.
//
// A Config holds the engine knobs (workers, spatial index, empty neighborhood
// policy, interpolation epsilon) and the per-stage schedules consumed by the
// engine: set abstraction stages, multi-scale grouping stages and feature
// propagation stages. Every size is explicit, so output buffers are sized before
// any work starts.
//
//	workers: 8
//	empty_policy: nearest
//	set_abstraction:
//	  - name: sa1
//	    npoint: 128
//	    radius: 0.2
//	    nsample: 64
//	    use_xyz: true
//	    pooling: max
package config
