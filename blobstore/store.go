// Package blobstore abstracts the storage backends container snapshots
// are saved to and loaded from.
//
// A snapshot is an immutable named blob: stores never mutate in place,
// Put replaces whole blobs atomically. Implementations must be safe for
// concurrent use.
//
// Built-in backends:
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem, mmap-backed reads
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible storage
//
// CachingStore and RateLimitedStore wrap any backend with read-through
// caching and request throttling.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing and retrieving immutable,
// named blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Put writes a blob atomically, replacing any existing blob of the
	// same name.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	io.ReaderAt
	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose contents are already
// resident in memory.
type Mappable interface {
	// Bytes returns the underlying byte slice without copying. The slice
	// is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll reads the full contents of a blob, using the zero-copy path
// when the blob supports it.
func ReadAll(b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}
	out := make([]byte, b.Size())
	if _, err := io.ReadFull(io.NewSectionReader(b, 0, b.Size()), out); err != nil {
		return nil, err
	}
	return out, nil
}
