package vector

import "iter"

// Array is one element of an Atomic container: an N-dimensional array of
// scalars with per-axis extents. Rank and shape may differ freely between
// elements of the same container.
type Array[T Scalar] struct {
	Shape []int64
	Data  []T
}

// Rank returns the number of axes.
func (a *Array[T]) Rank() int { return len(a.Shape) }

// Size returns the total number of values the shape describes. An empty
// shape or any zero extent describes the canonical empty element, so Size
// is zero regardless of the remaining extents.
func (a *Array[T]) Size() int64 {
	if len(a.Shape) == 0 {
		return 0
	}
	size := int64(1)
	for _, extent := range a.Shape {
		if extent <= 0 {
			return 0
		}
		size *= extent
	}
	return size
}

// IsEmpty reports whether the array is the canonical empty element.
func (a *Array[T]) IsEmpty() bool { return a.Size() == 0 }

// Atomic is an append-only vector of N-dimensional arrays of heterogeneous
// shape. All element values share one contiguous content buffer; offsets
// and extents live in parallel index buffers.
//
// Not safe for concurrent mutation; see the package documentation.
type Atomic[T Scalar] struct {
	cols        columns[T]
	compression Compression
	logger      *Logger
}

// NewAtomic returns an empty Atomic container. Buffers are pre-sized to
// one unit so the first append does not reallocate.
func NewAtomic[T Scalar](optFns ...Option) *Atomic[T] {
	o := applyOptions(optFns)
	return &Atomic[T]{
		cols:        newColumns[T](o, true),
		compression: o.compression,
		logger:      o.logger,
	}
}

// Len returns the number of elements.
func (v *Atomic[T]) Len() int { return v.cols.count }

// Insert appends e at pos, which must equal Len()+1; any other position
// fails with ErrSequenceViolation. A nil element fails with ErrNilElement.
// The element's data length must match the product of its extents, except
// that an empty or zero-extent shape requires empty data.
func (v *Atomic[T]) Insert(pos int, e *Array[T]) error {
	if e == nil {
		return ErrNilElement
	}
	if int64(len(e.Data)) != e.Size() {
		return &ShapeError{Shape: e.Shape, DataLen: len(e.Data)}
	}
	return v.cols.insert(pos, e.Data, e.Shape)
}

// Append appends e at the next free position.
func (v *Atomic[T]) Append(e *Array[T]) error {
	return v.Insert(v.cols.count+1, e)
}

// Get returns a view of the element at pos. Shape and Data alias container
// memory and are valid until the next mutation. Zero-size elements read
// back with their recorded extents and empty data.
func (v *Atomic[T]) Get(pos int) (Array[T], error) {
	data, shape, err := v.cols.span(pos)
	if err != nil {
		return Array[T]{}, err
	}
	return Array[T]{Shape: shape, Data: data}, nil
}

// Resize truncates the container to at most n elements, shrinking every
// buffer to exactly fit. Truncation is destructive: elements beyond n are
// unrecoverable. A negative n fails with ErrInvalidResize.
func (v *Atomic[T]) Resize(n int) error {
	old := v.cols.count
	if err := v.cols.resize(n); err != nil {
		return err
	}
	v.logger.LogResize(old, v.cols.count)
	return nil
}

// Compress shrinks every buffer to exactly fit the current contents,
// discarding growth slack. Element views are unaffected in value but are
// invalidated, as by any mutation.
func (v *Atomic[T]) Compress() {
	_ = v.cols.resize(v.cols.count)
}

// All returns a restartable iterator over (position, element view) pairs
// in increasing position order. Appending during iteration is safe for
// positions at or below the Len() observed at the start.
func (v *Atomic[T]) All() iter.Seq2[int, Array[T]] {
	return func(yield func(int, Array[T]) bool) {
		for pos := 1; pos <= v.cols.count; pos++ {
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

func (v *Atomic[T]) release() { v.cols.release() }
