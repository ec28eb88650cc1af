package pointgeo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pointgeo/model"
)

// ErrInvalidArgument is returned for bad shapes, non-positive counts or radii,
// empty inputs and out-of-range indices.
var ErrInvalidArgument = model.ErrInvalidArgument

// ErrDimensionMismatch indicates that a buffer's size does not match what the
// operation expects.
//
// The original underlying error can be accessed via errors.Unwrap. It matches
// ErrInvalidArgument under errors.Is.
type ErrDimensionMismatch struct {
	Field    string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("%s mismatch: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidArgument.
func (e *ErrDimensionMismatch) Is(target error) bool { return target == ErrInvalidArgument }

// ErrEmbed wraps a failure of a caller-supplied EmbedFunc.
type ErrEmbed struct {
	Stage Stage
	cause error
}

func (e *ErrEmbed) Error() string {
	return fmt.Sprintf("embed %s: %v", e.Stage, e.cause)
}

func (e *ErrEmbed) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ee *ErrEmbed
	if errors.As(err, &ee) {
		return err
	}
	var se *model.ShapeError
	if errors.As(err, &se) {
		return &ErrDimensionMismatch{Field: se.Field, Expected: se.Expected, Actual: se.Actual, cause: err}
	}
	return err
}
