package persist

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"unsafe"

	"github.com/torch/vector/internal/conv"
)

// Writer serializes snapshot sections after a header. Multi-byte fields
// are little-endian; array payloads are written as raw memory, validated
// for alignment first. A CRC32 of the uncompressed section bytes is
// appended by Finish, so a truncated or bit-flipped stream is detected on
// read regardless of compression mode.
type Writer struct {
	sink   io.Writer // header target, uncompressed
	sec    io.Writer // section target, possibly compressed
	crc    hash.Hash32
	finish func() error
}

// NewWriter writes the header to w and returns a Writer for the sections
// that follow. The header's Compression field selects the section codec.
func NewWriter(w io.Writer, h *Header) (*Writer, error) {
	if _, err := h.WriteTo(w); err != nil {
		return nil, err
	}
	sec, finish, err := h.Compression.wrapWriter(w)
	if err != nil {
		return nil, err
	}
	return &Writer{
		sink:   w,
		sec:    sec,
		crc:    crc32.NewIEEE(),
		finish: finish,
	}, nil
}

func (w *Writer) write(p []byte) error {
	if _, err := w.sec.Write(p); err != nil {
		return err
	}
	_, _ = w.crc.Write(p)
	return nil
}

// WriteUint64 writes a fixed-width integer section field.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.write(buf[:])
}

// Finish appends the CRC32 trailer and finalizes the compressed frame.
// It does not close the underlying writer.
func (w *Writer) Finish() error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], w.crc.Sum32())
	if _, err := w.sec.Write(buf[:]); err != nil {
		return err
	}
	return w.finish()
}

// WriteArray writes a tagged, length-prefixed array section: one kind tag
// byte, the element count as uint64, then the raw payload.
func WriteArray[T Scalar](w *Writer, a []T) error {
	kind := KindOf[T]()
	n, err := conv.IntToUint64(len(a))
	if err != nil {
		return err
	}

	var head [9]byte
	head[0] = byte(kind)
	binary.LittleEndian.PutUint64(head[1:], n)
	if err := w.write(head[:]); err != nil {
		return err
	}
	if len(a) == 0 {
		return nil
	}

	if err := validateAlignment(unsafe.Pointer(&a[0]), unsafe.Alignof(a[0])); err != nil {
		return err
	}
	payload := unsafe.Slice((*byte)(unsafe.Pointer(&a[0])), len(a)*kind.Size())
	return w.write(payload)
}

// validateAlignment guards the unsafe reinterpret of a scalar slice as raw
// bytes. Go allocations are always suitably aligned; this catches slices
// carved out of foreign memory.
func validateAlignment(p unsafe.Pointer, align uintptr) error {
	if uintptr(p)%align != 0 {
		return fmt.Errorf("persist: misaligned slice (addr %#x, need %d-byte alignment)", uintptr(p), align)
	}
	return nil
}
