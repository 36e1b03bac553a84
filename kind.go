package vector

import "github.com/torch/vector/persist"

// Scalar constrains the element types containers can store: one kind per
// storage width. The set is closed and checked once at construction, not
// per operation.
type Scalar = persist.Scalar

// Kind identifies a scalar element kind. It doubles as the on-wire tag.
type Kind = persist.Kind

// Re-exported element kinds.
const (
	KindInt8    = persist.KindInt8
	KindUint8   = persist.KindUint8
	KindInt16   = persist.KindInt16
	KindInt32   = persist.KindInt32
	KindInt64   = persist.KindInt64
	KindFloat32 = persist.KindFloat32
	KindFloat64 = persist.KindFloat64
)

// KindOf returns the Kind for a scalar type.
func KindOf[T Scalar]() Kind { return persist.KindOf[T]() }

// Compression selects whole-stream snapshot compression.
type Compression = persist.Compression

// Re-exported compression modes.
const (
	CompressionNone = persist.CompressionNone
	CompressionZstd = persist.CompressionZstd
	CompressionLZ4  = persist.CompressionLZ4
)
