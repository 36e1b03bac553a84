package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"unsafe"

	"github.com/torch/vector/internal/conv"
)

// ErrKindMismatch is returned when an array section's tag does not match
// the expected element kind.
var ErrKindMismatch = errors.New("persist: array kind mismatch")

// maxArrayElems bounds array allocations while reading untrusted streams.
const maxArrayElems = 1 << 34

// Reader deserializes snapshot sections written by Writer.
type Reader struct {
	sec     io.Reader
	crc     hash.Hash32
	release func()
}

// NewReader reads and validates the header from r and returns a Reader
// for the sections that follow, plus the parsed header. Call Close when
// done to release decompressor state.
func NewReader(r io.Reader) (*Reader, *Header, error) {
	var h Header
	if _, err := h.ReadFrom(r); err != nil {
		return nil, nil, err
	}
	sec, release, err := h.Compression.wrapReader(r)
	if err != nil {
		return nil, nil, err
	}
	return &Reader{
		sec:     sec,
		crc:     crc32.NewIEEE(),
		release: release,
	}, &h, nil
}

func (r *Reader) read(p []byte) error {
	if _, err := io.ReadFull(r.sec, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated stream: %w", ErrCorrupted, err)
		}
		return err
	}
	_, _ = r.crc.Write(p)
	return nil
}

// ReadUint64 reads a fixed-width integer section field.
func (r *Reader) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Finish reads the CRC32 trailer and verifies it against the sections
// consumed so far.
func (r *Reader) Finish() error {
	want := r.crc.Sum32()
	var buf [4]byte
	if _, err := io.ReadFull(r.sec, buf[:]); err != nil {
		return fmt.Errorf("%w: missing checksum trailer: %w", ErrCorrupted, err)
	}
	if got := binary.LittleEndian.Uint32(buf[:]); got != want {
		return fmt.Errorf("%w: checksum mismatch (got 0x%08x, want 0x%08x)", ErrCorrupted, got, want)
	}
	return nil
}

// Close releases decompressor state. It does not close the underlying
// reader.
func (r *Reader) Close() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// ReadArray reads a tagged array section, validating the kind tag against
// the requested element type.
func ReadArray[T Scalar](r *Reader) ([]T, error) {
	want := KindOf[T]()

	var head [9]byte
	if err := r.read(head[:]); err != nil {
		return nil, err
	}
	got := Kind(head[0])
	if got != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, got, want)
	}

	n := binary.LittleEndian.Uint64(head[1:])
	if n > maxArrayElems {
		return nil, fmt.Errorf("%w: array length %d exceeds limit", ErrCorrupted, n)
	}
	count, err := conv.Uint64ToInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if count == 0 {
		return nil, nil
	}

	a := make([]T, count)
	payload := unsafe.Slice((*byte)(unsafe.Pointer(&a[0])), count*want.Size())
	if err := r.read(payload); err != nil {
		return nil, err
	}
	return a, nil
}
