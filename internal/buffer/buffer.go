// Package buffer implements the growable contiguous storage underlying
// vector containers.
//
// A Buffer keeps all elements in a single allocation. Appends grow the
// allocation by doubling, so a sequence of n appends costs O(n) amortized.
// Truncate is the only shrink path: it reallocates to the exact new length,
// discarding growth slack. Containers rely on this for compress/resize.
//
// Thread safety: none. A Buffer has exactly one owner at a time; sharing
// across goroutines requires external coordination.
package buffer

// Buffer is a growable contiguous region of T.
//
// The used length is len of the underlying slice; the allocated capacity is
// its cap. Invariant: 0 <= Len() <= Cap().
type Buffer[T any] struct {
	data []T
}

// New creates a Buffer pre-sized to the given capacity with zero used
// length. Capacity is clamped to at least one unit so the first append
// never reallocates.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{data: make([]T, 0, capacity)}
}

// Wrap adopts an existing slice as the buffer's storage without copying.
// The caller must not retain its own reference to the slice.
func Wrap[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data}
}

// Len returns the used length.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Cap returns the allocated capacity.
func (b *Buffer[T]) Cap() int { return cap(b.data) }

// Data returns the used region. The slice aliases the buffer's memory and
// is valid until the next Grow, Append, or Truncate.
func (b *Buffer[T]) Data() []T { return b.data }

// At returns the value at index i. The index must be within the used
// length; out-of-range access panics like a slice access would.
func (b *Buffer[T]) At(i int) T { return b.data[i] }

// Grow ensures capacity for at least minLen used units, doubling the
// capacity until it fits. Contents are preserved. Allocation failure is
// fatal (runtime OOM), not a recoverable error.
func (b *Buffer[T]) Grow(minLen int) {
	if minLen <= cap(b.data) {
		return
	}
	newCap := cap(b.data)
	if newCap < 1 {
		newCap = 1
	}
	for newCap < minLen {
		newCap *= 2
	}
	grown := make([]T, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Append copies src onto the end of the used region, growing as needed.
func (b *Buffer[T]) Append(src ...T) {
	b.Grow(len(b.data) + len(src))
	b.data = append(b.data, src...)
}

// Extend grows the used length by n and returns the newly used span for
// the caller to fill. n must be >= 0.
func (b *Buffer[T]) Extend(n int) []T {
	old := len(b.data)
	b.Grow(old + n)
	b.data = b.data[: old+n : cap(b.data)]
	return b.data[old:]
}

// Truncate sets the used length to n and physically reclaims capacity down
// to exactly n. It panics if n is negative or exceeds the used length.
// This is the only shrink path; compress and resize funnel through it.
func (b *Buffer[T]) Truncate(n int) {
	if n < 0 || n > len(b.data) {
		panic("buffer: truncate out of range")
	}
	if cap(b.data) == n {
		b.data = b.data[:n]
		return
	}
	shrunk := make([]T, n)
	copy(shrunk, b.data[:n])
	b.data = shrunk
}
