package compcurve

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySeries is returned when a sweep is started on an empty series.
	ErrEmptySeries = errors.New("series must not be empty")

	// ErrInvalidAxis is returned for an unrecognized sweep axis.
	ErrInvalidAxis = errors.New("invalid sweep axis")

	// ErrNoSweepValues is returned when the sweep value list is empty.
	ErrNoSweepValues = errors.New("sweep values must not be empty")

	// ErrAllPointsFailed is returned when every sweep point was skipped and
	// the curve would be empty.
	ErrAllPointsFailed = errors.New("all sweep points failed")
)

// ErrInvalidDimension indicates an invalid series dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrDimensionMismatch indicates rows of inconsistent dimensionality.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// SweepPointError records why a single sweep point was skipped. It carries
// the axis value so callers can adjust or rerun just that point.
//
// The underlying error is accessible via errors.Unwrap.
type SweepPointError struct {
	Axis  Axis
	Value int
	cause error
}

func (e *SweepPointError) Error() string {
	return fmt.Sprintf("sweep point %s=%d: %v", e.Axis, e.Value, e.cause)
}

func (e *SweepPointError) Unwrap() error { return e.cause }
