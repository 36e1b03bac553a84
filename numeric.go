package vector

import (
	"fmt"
	"iter"

	"github.com/torch/vector/internal/buffer"
)

// Numeric is an append-only vector of fixed-width numeric elements: each
// element is a run of exactly stride scalars (a single value for stride
// one, a fixed-shape sub-tensor otherwise). With every element the same
// width, the offset index degenerates to the stride itself.
//
// Not safe for concurrent mutation; see the package documentation.
type Numeric[T Scalar] struct {
	content     *buffer.Buffer[T]
	stride      int
	count       int
	compression Compression
	logger      *Logger
}

// NewNumeric returns an empty fixed-stride vector. The stride is the
// number of scalars per element and must be positive.
func NewNumeric[T Scalar](stride int, optFns ...Option) (*Numeric[T], error) {
	if stride < 1 {
		return nil, fmt.Errorf("vector: stride must be positive, got %d", stride)
	}
	o := applyOptions(optFns)
	return &Numeric[T]{
		content:     buffer.New[T](o.initialCapacity),
		stride:      stride,
		compression: o.compression,
		logger:      o.logger,
	}, nil
}

// Stride returns the number of scalars per element.
func (v *Numeric[T]) Stride() int { return v.stride }

// Len returns the number of elements.
func (v *Numeric[T]) Len() int { return v.count }

// Insert appends e at pos, which must equal Len()+1. A nil slice fails
// with ErrNilElement; a length other than the stride fails with a
// WidthError wrapping ErrKindMismatch.
func (v *Numeric[T]) Insert(pos int, e []T) error {
	if e == nil {
		return ErrNilElement
	}
	if len(e) != v.stride {
		return &WidthError{Len: len(e), Stride: v.stride}
	}
	if pos != v.count+1 {
		return &SequenceError{Pos: pos, Want: v.count + 1}
	}
	v.content.Append(e...)
	v.count++
	return nil
}

// Append appends e at the next free position.
func (v *Numeric[T]) Append(e []T) error {
	return v.Insert(v.count+1, e)
}

// Get returns a view of the element at pos. The slice aliases container
// memory and is valid until the next mutation.
func (v *Numeric[T]) Get(pos int) ([]T, error) {
	if pos < 1 || pos > v.count {
		return nil, &PositionError{Pos: pos, Count: v.count}
	}
	start := (pos - 1) * v.stride
	end := start + v.stride
	return v.content.Data()[start:end:end], nil
}

// Resize truncates the container to at most n elements, shrinking the
// content buffer to exactly fit. A negative n fails with ErrInvalidResize.
func (v *Numeric[T]) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidResize, n)
	}
	if n > v.count {
		n = v.count
	}
	old := v.count
	v.count = n
	v.content.Truncate(n * v.stride)
	v.logger.LogResize(old, n)
	return nil
}

// Compress shrinks the content buffer to exactly fit the current contents.
func (v *Numeric[T]) Compress() {
	v.content.Truncate(v.count * v.stride)
}

// All returns a restartable iterator over (position, element) pairs in
// increasing position order.
func (v *Numeric[T]) All() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for pos := 1; pos <= v.count; pos++ {
			e, err := v.Get(pos)
			if err != nil {
				return
			}
			if !yield(pos, e) {
				return
			}
		}
	}
}

func (v *Numeric[T]) release() {
	v.content = nil
	v.count = 0
}
