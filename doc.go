// Package vector implements append-only, randomly-indexable sequence
// containers whose elements are variable-size numeric arrays or byte
// strings, backed by a single contiguous buffer instead of one allocation
// per element.
//
// Three container variants share one core:
//
//   - Atomic[T]: each element is an N-dimensional array of arbitrary rank
//     and shape. Element bytes, cumulative offsets, and per-axis extents
//     live in parallel growable buffers.
//   - Bytes: each element is a byte string; rank is fixed at one, so the
//     shape table is dropped.
//   - Numeric[T]: each element is a fixed-width run of scalars; offsets
//     degenerate to a constant stride.
//
// Positions are 1-based and dense: the only mutator is an append at
// position Len()+1, reads are O(1) through the offset index, and Resize
// destructively truncates from the tail. Compress discards growth slack so
// serialized snapshots carry no wasted capacity.
//
// Basic usage:
//
//	v := vector.NewAtomic[float32]()
//	_ = v.Append(&vector.Array[float32]{Shape: []int64{2, 2}, Data: []float32{1, 2, 3, 4}})
//
//	e, _ := v.Get(1)        // view, not a copy
//	for pos, a := range v.All() {
//	    _ = pos
//	    _ = a
//	}
//
//	var buf bytes.Buffer
//	_, _ = v.WriteTo(&buf)  // compressed-to-fit, checksummed snapshot
//
// Containers are not safe for concurrent mutation; at most one goroutine
// may append or resize a given container at a time. Views returned by Get
// and All alias container memory and remain valid until the next mutation.
//
// The handle subpackage adapts containers into opaque, reference-counted
// handles for embedding inside generic host structures; the blobstore
// subpackage persists snapshots to local disk, S3, or MinIO.
package vector
