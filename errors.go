package vector

import (
	"errors"
	"fmt"
)

// Contract-violation sentinels. All are synchronous, non-retryable caller
// errors raised at the point of misuse.
var (
	// ErrIndexOutOfBounds is returned for read positions outside [1, Len()].
	ErrIndexOutOfBounds = errors.New("vector: position out of bounds")

	// ErrSequenceViolation is returned when an insert targets any position
	// other than Len()+1. Containers are append-only and gap-free.
	ErrSequenceViolation = errors.New("vector: position out of sequence")

	// ErrNilElement is returned when a nil element is appended. Removal and
	// tombstoning are unsupported, so absent elements are rejected outright.
	ErrNilElement = errors.New("vector: nil element rejected")

	// ErrKindMismatch is returned when an element does not match the
	// container's declared element kind, shape contract, or stride.
	ErrKindMismatch = errors.New("vector: element kind mismatch")

	// ErrInvalidResize is returned for negative resize targets.
	ErrInvalidResize = errors.New("vector: invalid resize")
)

// PositionError indicates a read position outside the container bounds.
//
// It unwraps to ErrIndexOutOfBounds.
type PositionError struct {
	Pos   int
	Count int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d out of bounds [1, %d]", e.Pos, e.Count)
}

func (e *PositionError) Unwrap() error { return ErrIndexOutOfBounds }

// SequenceError indicates an insert at a position other than the next
// free one.
//
// It unwraps to ErrSequenceViolation.
type SequenceError struct {
	Pos  int
	Want int
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("insert at position %d, next free position is %d", e.Pos, e.Want)
}

func (e *SequenceError) Unwrap() error { return ErrSequenceViolation }

// ShapeError indicates an element whose data length disagrees with the
// product of its extents.
//
// It unwraps to ErrKindMismatch.
type ShapeError struct {
	Shape   []int64
	DataLen int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape %v does not describe %d values", e.Shape, e.DataLen)
}

func (e *ShapeError) Unwrap() error { return ErrKindMismatch }

// WidthError indicates an element whose length disagrees with the fixed
// stride of a Numeric container.
//
// It unwraps to ErrKindMismatch.
type WidthError struct {
	Len    int
	Stride int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("element of %d values in a container of stride %d", e.Len, e.Stride)
}

func (e *WidthError) Unwrap() error { return ErrKindMismatch }
