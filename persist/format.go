// Package persist implements the binary snapshot format for vector
// containers: a checksummed 16-byte header followed by fixed-width scalars
// and tagged, length-prefixed arrays, optionally compressed as a whole
// stream. This replaced a slower, reflection-based encoding used in early
// iterations.
package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	// Magic identifies container snapshot streams (ASCII: "TVC0").
	Magic = 0x54564330

	// Version is the current snapshot format version.
	Version uint32 = 1

	// HeaderSize is the size of the stream header in bytes.
	HeaderSize = 16
)

var (
	// ErrInvalidMagic is returned when a stream has an invalid magic number.
	ErrInvalidMagic = errors.New("persist: invalid magic number")

	// ErrInvalidVersion is returned when a stream has an unsupported version.
	ErrInvalidVersion = errors.New("persist: unsupported format version")

	// ErrCorrupted is returned when a stream fails checksum validation or
	// carries an implausible length field.
	ErrCorrupted = errors.New("persist: stream corrupted")
)

// Kind identifies the scalar storage type of an array section. It is both
// the in-memory element kind of a container and the on-wire tag byte.
type Kind uint8

// Scalar element kinds. The zero value is invalid.
const (
	KindInvalid Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
)

// Size returns the storage width of the kind in bytes.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16:
		return 2
	case KindInt32, KindFloat32:
		return 4
	case KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k is a known scalar kind.
func (k Kind) Valid() bool { return k > KindInvalid && k <= KindFloat64 }

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindUint8:
		return "uint8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Scalar constrains the element types containers can store. The list is
// closed: one kind per storage width, checked once at construction.
type Scalar interface {
	int8 | uint8 | int16 | int32 | int64 | float32 | float64
}

// KindOf returns the Kind for a scalar type.
func KindOf[T Scalar]() Kind {
	var z T
	switch any(z).(type) {
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	default:
		return KindInvalid
	}
}

// Container identifies the container variant a stream holds.
type Container uint8

const (
	// ContainerAtomic holds elements of arbitrary rank and shape.
	ContainerAtomic Container = 1
	// ContainerBytes holds byte strings, rank fixed at one.
	ContainerBytes Container = 2
	// ContainerNumeric holds fixed-stride numeric elements.
	ContainerNumeric Container = 3
)

// Valid reports whether c is a known container variant.
func (c Container) Valid() bool {
	return c == ContainerAtomic || c == ContainerBytes || c == ContainerNumeric
}

// Header is the 16-byte header at the start of every snapshot stream.
// All multi-byte fields are little-endian. The header itself is never
// compressed; Compression applies to everything after it.
type Header struct {
	Magic       uint32
	Version     uint32
	Container   Container
	Elem        Kind
	Compression Compression
	Checksum    uint32 // CRC32 of the preceding header bytes
}

// Validate checks magic, version, and enum fields.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version > Version {
		return fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	if !h.Container.Valid() {
		return fmt.Errorf("%w: unknown container %d", ErrCorrupted, h.Container)
	}
	if !h.Elem.Valid() {
		return fmt.Errorf("%w: unknown element kind %d", ErrCorrupted, h.Elem)
	}
	if !h.Compression.Valid() {
		return fmt.Errorf("%w: unknown compression %d", ErrCorrupted, h.Compression)
	}
	return nil
}

// WriteTo writes the header to w.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	h.Magic = Magic
	h.Version = Version

	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	buf[8] = byte(h.Container)
	buf[9] = byte(h.Elem)
	buf[10] = byte(h.Compression)
	// buf[11] reserved
	h.Checksum = crc32.ChecksumIEEE(buf[:12])
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksum)

	n, err := w.Write(buf[:])
	return int64(n), err
}

// ReadFrom reads and validates the header from r.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return int64(n), err
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Container = Container(buf[8])
	h.Elem = Kind(buf[9])
	h.Compression = Compression(buf[10])
	h.Checksum = binary.LittleEndian.Uint32(buf[12:16])

	if h.Checksum != crc32.ChecksumIEEE(buf[:12]) {
		return int64(n), fmt.Errorf("%w: header checksum mismatch", ErrCorrupted)
	}
	return int64(n), h.Validate()
}
