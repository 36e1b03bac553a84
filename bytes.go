package vector

import "iter"

// Bytes is an append-only vector of byte strings. Rank is fixed at one,
// so element location needs only the offset index; there is no shape
// table. Element bytes are stored back to back in one contiguous buffer.
//
// Not safe for concurrent mutation; see the package documentation.
type Bytes struct {
	cols        columns[uint8]
	compression Compression
	logger      *Logger
}

// NewBytes returns an empty byte-string vector.
func NewBytes(optFns ...Option) *Bytes {
	o := applyOptions(optFns)
	return &Bytes{
		cols:        newColumns[uint8](o, false),
		compression: o.compression,
		logger:      o.logger,
	}
}

// Len returns the number of elements.
func (v *Bytes) Len() int { return v.cols.count }

// Insert appends b at pos, which must equal Len()+1. A nil slice fails
// with ErrNilElement; an empty non-nil slice is a valid zero-length
// element that writes no content bytes.
func (v *Bytes) Insert(pos int, b []byte) error {
	if b == nil {
		return ErrNilElement
	}
	return v.cols.insert(pos, b, nil)
}

// Append appends b at the next free position.
func (v *Bytes) Append(b []byte) error {
	return v.Insert(v.cols.count+1, b)
}

// Get returns a view of the element at pos. The slice aliases container
// memory and is valid until the next mutation. Zero-length elements read
// back empty but non-nil.
func (v *Bytes) Get(pos int) ([]byte, error) {
	data, _, err := v.cols.span(pos)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Resize truncates the container to at most n elements; see Atomic.Resize.
func (v *Bytes) Resize(n int) error {
	old := v.cols.count
	if err := v.cols.resize(n); err != nil {
		return err
	}
	v.logger.LogResize(old, v.cols.count)
	return nil
}

// Compress shrinks every buffer to exactly fit the current contents.
func (v *Bytes) Compress() {
	_ = v.cols.resize(v.cols.count)
}

// All returns a restartable iterator over (position, element) pairs in
// increasing position order.
func (v *Bytes) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for pos := 1; pos <= v.cols.count; pos++ {
			b, err := v.Get(pos)
			if err != nil {
				return
			}
			if !yield(pos, b) {
				return
			}
		}
	}
}

func (v *Bytes) release() { v.cols.release() }
