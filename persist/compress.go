package persist

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects whole-stream compression of the snapshot sections.
// The container payload itself is never re-encoded; compression applies
// only to the serialized stream after the header.
type Compression uint8

const (
	// CompressionNone writes sections uncompressed.
	CompressionNone Compression = 0
	// CompressionZstd compresses sections with zstandard.
	CompressionZstd Compression = 1
	// CompressionLZ4 compresses sections with lz4.
	CompressionLZ4 Compression = 2
)

// Valid reports whether c is a known compression mode.
func (c Compression) Valid() bool { return c <= CompressionLZ4 }

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// wrapWriter layers the configured compressor over w. The returned closer
// flushes and finalizes the compressed frame; it does not close w.
func (c Compression) wrapWriter(w io.Writer) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		return lw, lw.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, c)
	}
}

// wrapReader layers the configured decompressor over r.
func (c Compression) wrapReader(r io.Reader) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr.IOReadCloser(), zr.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, c)
	}
}
