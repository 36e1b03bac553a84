package vector

import (
	"fmt"
	"io"

	"github.com/torch/vector/internal/buffer"
	"github.com/torch/vector/internal/conv"
	"github.com/torch/vector/persist"
)

// countingWriter tracks bytes written through it so WriteTo can report the
// full stream size, compressed frames included.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// WriteTo serializes the container to w. The container is compressed to
// exact fit first, so a later load reconstructs buffers whose capacities
// equal their logical extents. The stream layout after the header is:
// count, shape index array, shapes array, offsets array, content array,
// CRC32 trailer.
func (v *Atomic[T]) WriteTo(w io.Writer) (int64, error) {
	v.Compress()

	cw := &countingWriter{w: w}
	h := persist.Header{
		Container:   persist.ContainerAtomic,
		Elem:        KindOf[T](),
		Compression: v.compression,
	}
	pw, err := persist.NewWriter(cw, &h)
	if err != nil {
		return cw.n, err
	}

	count, err := conv.IntToUint64(v.cols.count)
	if err != nil {
		return cw.n, err
	}
	if err := pw.WriteUint64(count); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.shapeIndex.Data()); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.shapes.Data()); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.offsets.Data()); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.content.Data()); err != nil {
		return cw.n, err
	}
	return cw.n, pw.Finish()
}

// ReadFrom replaces the container's contents with a snapshot read from r.
// The stream is validated structurally (header checksum, section CRC,
// index monotonicity) before any element becomes visible; on error the
// receiver is left unchanged.
func (v *Atomic[T]) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	pr, h, err := persist.NewReader(cr)
	if err != nil {
		return cr.n, err
	}
	defer pr.Close()

	if err := checkHeader(h, persist.ContainerAtomic, KindOf[T]()); err != nil {
		return cr.n, err
	}

	n, err := pr.ReadUint64()
	if err != nil {
		return cr.n, err
	}
	count, err := conv.Uint64ToInt(n)
	if err != nil {
		return cr.n, fmt.Errorf("%w: %w", persist.ErrCorrupted, err)
	}
	shapeIndex, err := persist.ReadArray[int64](pr)
	if err != nil {
		return cr.n, err
	}
	shapes, err := persist.ReadArray[int64](pr)
	if err != nil {
		return cr.n, err
	}
	offsets, err := persist.ReadArray[int64](pr)
	if err != nil {
		return cr.n, err
	}
	content, err := persist.ReadArray[T](pr)
	if err != nil {
		return cr.n, err
	}
	if err := pr.Finish(); err != nil {
		return cr.n, err
	}

	if err := checkIndex("offsets", offsets, count, len(content)); err != nil {
		return cr.n, err
	}
	if err := checkIndex("shape index", shapeIndex, count, len(shapes)); err != nil {
		return cr.n, err
	}
	for i := 1; i <= count; i++ {
		shape := shapes[shapeIndex[i-1]:shapeIndex[i]]
		want := (&Array[T]{Shape: shape}).Size()
		if got := offsets[i] - offsets[i-1]; got != want {
			return cr.n, fmt.Errorf("%w: element %d holds %d values, shape %v describes %d",
				persist.ErrCorrupted, i, got, shape, want)
		}
	}

	v.cols = columns[T]{
		content:    buffer.Wrap(content),
		offsets:    buffer.Wrap(offsets),
		shapeIndex: buffer.Wrap(shapeIndex),
		shapes:     buffer.Wrap(shapes),
		count:      count,
	}
	return cr.n, nil
}

// WriteTo serializes the container to w. Layout after the header: count,
// total content length, offsets array, content array, CRC32 trailer.
func (v *Bytes) WriteTo(w io.Writer) (int64, error) {
	v.Compress()

	cw := &countingWriter{w: w}
	h := persist.Header{
		Container:   persist.ContainerBytes,
		Elem:        persist.KindUint8,
		Compression: v.compression,
	}
	pw, err := persist.NewWriter(cw, &h)
	if err != nil {
		return cw.n, err
	}

	count, err := conv.IntToUint64(v.cols.count)
	if err != nil {
		return cw.n, err
	}
	if err := pw.WriteUint64(count); err != nil {
		return cw.n, err
	}
	if err := pw.WriteUint64(uint64(v.cols.content.Len())); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.offsets.Data()); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.cols.content.Data()); err != nil {
		return cw.n, err
	}
	return cw.n, pw.Finish()
}

// ReadFrom replaces the container's contents with a snapshot read from r.
func (v *Bytes) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	pr, h, err := persist.NewReader(cr)
	if err != nil {
		return cr.n, err
	}
	defer pr.Close()

	if err := checkHeader(h, persist.ContainerBytes, persist.KindUint8); err != nil {
		return cr.n, err
	}

	n, err := pr.ReadUint64()
	if err != nil {
		return cr.n, err
	}
	count, err := conv.Uint64ToInt(n)
	if err != nil {
		return cr.n, fmt.Errorf("%w: %w", persist.ErrCorrupted, err)
	}
	total, err := pr.ReadUint64()
	if err != nil {
		return cr.n, err
	}
	offsets, err := persist.ReadArray[int64](pr)
	if err != nil {
		return cr.n, err
	}
	content, err := persist.ReadArray[uint8](pr)
	if err != nil {
		return cr.n, err
	}
	if err := pr.Finish(); err != nil {
		return cr.n, err
	}

	if total != uint64(len(content)) {
		return cr.n, fmt.Errorf("%w: content length %d disagrees with declared %d",
			persist.ErrCorrupted, len(content), total)
	}
	if err := checkIndex("offsets", offsets, count, len(content)); err != nil {
		return cr.n, err
	}

	v.cols = columns[uint8]{
		content: buffer.Wrap(content),
		offsets: buffer.Wrap(offsets),
		count:   count,
	}
	return cr.n, nil
}

// WriteTo serializes the container to w. Layout after the header: count,
// stride, content array, CRC32 trailer. There is no offsets section; the
// stride locates every element.
func (v *Numeric[T]) WriteTo(w io.Writer) (int64, error) {
	v.Compress()

	cw := &countingWriter{w: w}
	h := persist.Header{
		Container:   persist.ContainerNumeric,
		Elem:        KindOf[T](),
		Compression: v.compression,
	}
	pw, err := persist.NewWriter(cw, &h)
	if err != nil {
		return cw.n, err
	}

	count, err := conv.IntToUint64(v.count)
	if err != nil {
		return cw.n, err
	}
	if err := pw.WriteUint64(count); err != nil {
		return cw.n, err
	}
	if err := pw.WriteUint64(uint64(v.stride)); err != nil {
		return cw.n, err
	}
	if err := persist.WriteArray(pw, v.content.Data()); err != nil {
		return cw.n, err
	}
	return cw.n, pw.Finish()
}

// ReadFrom replaces the container's contents with a snapshot read from r.
// The stream's stride must match the receiver's.
func (v *Numeric[T]) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	pr, h, err := persist.NewReader(cr)
	if err != nil {
		return cr.n, err
	}
	defer pr.Close()

	if err := checkHeader(h, persist.ContainerNumeric, KindOf[T]()); err != nil {
		return cr.n, err
	}

	n, err := pr.ReadUint64()
	if err != nil {
		return cr.n, err
	}
	count, err := conv.Uint64ToInt(n)
	if err != nil {
		return cr.n, fmt.Errorf("%w: %w", persist.ErrCorrupted, err)
	}
	s, err := pr.ReadUint64()
	if err != nil {
		return cr.n, err
	}
	stride, err := conv.Uint64ToInt(s)
	if err != nil || stride < 1 {
		return cr.n, fmt.Errorf("%w: invalid stride %d", persist.ErrCorrupted, s)
	}
	if stride != v.stride {
		return cr.n, fmt.Errorf("%w: stream stride %d, container stride %d",
			persist.ErrKindMismatch, stride, v.stride)
	}
	content, err := persist.ReadArray[T](pr)
	if err != nil {
		return cr.n, err
	}
	if err := pr.Finish(); err != nil {
		return cr.n, err
	}

	if len(content) != count*stride {
		return cr.n, fmt.Errorf("%w: %d values for %d elements of stride %d",
			persist.ErrCorrupted, len(content), count, stride)
	}

	v.content = buffer.Wrap(content)
	v.count = count
	return cr.n, nil
}

func checkHeader(h *persist.Header, want persist.Container, elem Kind) error {
	if h.Container != want {
		return fmt.Errorf("%w: stream holds container %d, want %d",
			persist.ErrKindMismatch, h.Container, want)
	}
	if h.Elem != elem {
		return fmt.Errorf("%w: stream holds %s elements, want %s",
			persist.ErrKindMismatch, h.Elem, elem)
	}
	return nil
}

// checkIndex validates a cumulative index read from a snapshot: count+1
// entries, starting at zero, non-decreasing, closing at the backing
// array's length.
func checkIndex(name string, index []int64, count, backing int) error {
	if len(index) != count+1 {
		return fmt.Errorf("%w: %s holds %d entries for %d elements",
			persist.ErrCorrupted, name, len(index), count)
	}
	if index[0] != 0 {
		return fmt.Errorf("%w: %s starts at %d", persist.ErrCorrupted, name, index[0])
	}
	for i := 1; i < len(index); i++ {
		if index[i] < index[i-1] {
			return fmt.Errorf("%w: %s decreases at entry %d", persist.ErrCorrupted, name, i)
		}
	}
	if index[count] != int64(backing) {
		return fmt.Errorf("%w: %s closes at %d, backing length is %d",
			persist.ErrCorrupted, name, index[count], backing)
	}
	return nil
}
