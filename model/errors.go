package model

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for bad shapes, non-positive counts or
// radii, empty inputs, and out-of-range indices.
var ErrInvalidArgument = errors.New("invalid argument")

// ShapeError reports a size that does not match what an operation expects.
// It matches ErrInvalidArgument under errors.Is.
type ShapeError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid argument: %s mismatch: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ShapeError) Is(target error) bool { return target == ErrInvalidArgument }
