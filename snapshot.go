package vector

import (
	"bytes"
	"context"
	"io"

	"github.com/torch/vector/blobstore"
)

// loggerSource lets the snapshot helpers reuse the logger a container
// was built with.
type loggerSource interface {
	snapshotLogger() *Logger
}

func (v *Atomic[T]) snapshotLogger() *Logger  { return v.logger }
func (v *Bytes) snapshotLogger() *Logger      { return v.logger }
func (v *Numeric[T]) snapshotLogger() *Logger { return v.logger }

func snapshotLoggerOf(x any) *Logger {
	if s, ok := x.(loggerSource); ok {
		return s.snapshotLogger()
	}
	return NoopLogger()
}

// SaveTo serializes src and writes the snapshot to store under name.
// The whole snapshot is staged in memory first so the store sees one
// atomic Put.
func SaveTo(ctx context.Context, store blobstore.BlobStore, name string, src io.WriterTo) error {
	logger := snapshotLoggerOf(src)

	var buf bytes.Buffer
	n, err := src.WriteTo(&buf)
	if err != nil {
		logger.LogSnapshot(ctx, "save", name, n, err)
		return err
	}

	err = store.Put(ctx, name, buf.Bytes())
	logger.LogSnapshot(ctx, "save", name, n, err)
	return err
}

// LoadFrom reads the snapshot named name from store into dst, replacing
// its contents. dst is left unchanged on error.
func LoadFrom(ctx context.Context, store blobstore.BlobStore, name string, dst io.ReaderFrom) error {
	logger := snapshotLoggerOf(dst)

	blob, err := store.Open(ctx, name)
	if err != nil {
		logger.LogSnapshot(ctx, "load", name, 0, err)
		return err
	}
	defer blob.Close()

	n, err := dst.ReadFrom(io.NewSectionReader(blob, 0, blob.Size()))
	logger.LogSnapshot(ctx, "load", name, n, err)
	return err
}
