package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torch/vector/blobstore"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	v := NewAtomic[float32](WithCompression(CompressionZstd))
	require.NoError(t, v.Append(&Array[float32]{Shape: []int64{2}, Data: []float32{1.5, 2.5}}))
	require.NoError(t, v.Append(&Array[float32]{Shape: []int64{3}, Data: []float32{3, 4, 5}}))

	require.NoError(t, SaveTo(ctx, store, "snapshots/v1", v))

	names, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/v1"}, names)

	loaded := NewAtomic[float32]()
	require.NoError(t, LoadFrom(ctx, store, "snapshots/v1", loaded))

	require.Equal(t, 2, loaded.Len())
	got, err := loaded.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 2.5}, got.Data)
}

func TestLoadFromMissingBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	loaded := NewBytes()
	err := LoadFrom(ctx, store, "absent", loaded)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Equal(t, 0, loaded.Len())
}

func TestSnapshotOverwrite(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	v, err := NewNumeric[int32](2)
	require.NoError(t, err)
	require.NoError(t, v.Append([]int32{1, 2}))
	require.NoError(t, SaveTo(ctx, store, "n", v))

	require.NoError(t, v.Append([]int32{3, 4}))
	require.NoError(t, SaveTo(ctx, store, "n", v))

	loaded, err := NewNumeric[int32](2)
	require.NoError(t, err)
	require.NoError(t, LoadFrom(ctx, store, "n", loaded))
	assert.Equal(t, 2, loaded.Len())
}
