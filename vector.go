package vector

import (
	"fmt"

	"github.com/torch/vector/internal/buffer"
)

// columns is the storage core shared by Atomic and Bytes: raw element
// values concatenated in a content buffer, located through a parallel
// buffer of cumulative offsets, plus an optional second-level index of
// per-element extents for shape-tracking containers.
//
// The offsets buffer always holds count+1 entries with offsets[0] == 0,
// so element i (1-based) spans content[offsets[i-1]:offsets[i]]. The
// shape index mirrors this one level down: shapeIndex[i]-shapeIndex[i-1]
// is the rank of element i and selects its extents out of shapes.
type columns[T Scalar] struct {
	content    *buffer.Buffer[T]
	offsets    *buffer.Buffer[int64]
	shapeIndex *buffer.Buffer[int64] // nil when shape tracking is off
	shapes     *buffer.Buffer[int64]
	count      int
}

func newColumns[T Scalar](o options, trackShapes bool) columns[T] {
	c := columns[T]{
		content: buffer.New[T](o.initialCapacity),
		offsets: buffer.New[int64](2),
	}
	c.offsets.Append(0)
	if trackShapes {
		c.shapeIndex = buffer.New[int64](2)
		c.shapeIndex.Append(0)
		c.shapes = buffer.New[int64](1)
	}
	return c
}

// insert appends one element at pos, which must be count+1. A zero-length
// element writes nothing to content but still records its spans.
func (c *columns[T]) insert(pos int, data []T, shape []int64) error {
	if pos != c.count+1 {
		return &SequenceError{Pos: pos, Want: c.count + 1}
	}

	base := c.offsets.At(c.count)
	c.content.Append(data...)
	c.offsets.Append(base + int64(len(data)))

	if c.shapeIndex != nil {
		sbase := c.shapeIndex.At(c.count)
		c.shapes.Append(shape...)
		c.shapeIndex.Append(sbase + int64(len(shape)))
	}

	c.count++
	return nil
}

// span returns aliasing views of the element at pos and, for shape-tracking
// containers, its extents.
func (c *columns[T]) span(pos int) (data []T, shape []int64, err error) {
	if pos < 1 || pos > c.count {
		return nil, nil, &PositionError{Pos: pos, Count: c.count}
	}

	start, end := c.offsets.At(pos-1), c.offsets.At(pos)
	data = c.content.Data()[start:end:end]

	if c.shapeIndex != nil {
		s, e := c.shapeIndex.At(pos-1), c.shapeIndex.At(pos)
		shape = c.shapes.Data()[s:e:e]
	}
	return data, shape, nil
}

// resize truncates the container to at most n elements and shrinks every
// buffer to the exact extent of what remains. Elements beyond n are
// unrecoverable.
func (c *columns[T]) resize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidResize, n)
	}
	if n > c.count {
		n = c.count
	}

	// The surviving extents must be read from the indexes before any
	// buffer shrinks; truncating the offsets first would leave nothing to
	// compute the content length from.
	contentLen := int(c.offsets.At(n))
	var shapesLen int
	if c.shapeIndex != nil {
		shapesLen = int(c.shapeIndex.At(n))
	}

	c.count = n
	c.offsets.Truncate(n + 1)
	c.content.Truncate(contentLen)
	if c.shapeIndex != nil {
		c.shapeIndex.Truncate(n + 1)
		c.shapes.Truncate(shapesLen)
	}
	return nil
}

// release drops the buffer references so any later use of this view fails
// fast. Called when handle ownership ends the container's lifetime.
func (c *columns[T]) release() {
	c.content = nil
	c.offsets = nil
	c.shapeIndex = nil
	c.shapes = nil
	c.count = 0
}
