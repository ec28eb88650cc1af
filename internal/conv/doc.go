// Package conv provides checked conversions into the fixed-width index types
// used by point sets.
//
// Indices are stored as int32, so any count used to address points must fit
// that range. For conversions that are provably
// safe by construction (loop indices below a validated count), use direct type
// casts instead.
package conv
