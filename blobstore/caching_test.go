package blobstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts backend opens so tests can observe cache hits.
type countingStore struct {
	BlobStore
	opens atomic.Int64
}

func (c *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	c.opens.Add(1)
	return c.BlobStore.Open(ctx, name)
}

// gatedStore blocks its first Open between entry and an external signal
// so tests can interleave writes with an in-flight cache fill.
type gatedStore struct {
	BlobStore
	entered chan struct{}
	proceed chan struct{}
	once    sync.Once
}

func (g *gatedStore) Open(ctx context.Context, name string) (Blob, error) {
	gate := false
	g.once.Do(func() { gate = true })
	if gate {
		close(g.entered)
		<-g.proceed
	}
	return g.BlobStore.Open(ctx, name)
}

func TestCachingStore(t *testing.T) {
	ctx := context.Background()

	newCached := func(t *testing.T, maxBytes int64) (*CachingStore, *countingStore) {
		t.Helper()
		backend := &countingStore{BlobStore: NewMemoryStore()}
		return NewCachingStore(backend, maxBytes), backend
	}

	t.Run("second open hits the cache", func(t *testing.T) {
		cached, backend := newCached(t, 0)
		require.NoError(t, cached.Put(ctx, "a", []byte("data")))

		for i := 0; i < 3; i++ {
			blob, err := cached.Open(ctx, "a")
			require.NoError(t, err)
			data, err := ReadAll(blob)
			require.NoError(t, err)
			assert.Equal(t, []byte("data"), data)
			require.NoError(t, blob.Close())
		}
		assert.Equal(t, int64(1), backend.opens.Load())
	})

	t.Run("put invalidates", func(t *testing.T) {
		cached, backend := newCached(t, 0)
		require.NoError(t, cached.Put(ctx, "a", []byte("v1")))

		blob, err := cached.Open(ctx, "a")
		require.NoError(t, err)
		blob.Close()

		require.NoError(t, cached.Put(ctx, "a", []byte("v2")))

		blob, err = cached.Open(ctx, "a")
		require.NoError(t, err)
		defer blob.Close()
		data, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
		assert.Equal(t, int64(2), backend.opens.Load())
	})

	t.Run("miss errors pass through", func(t *testing.T) {
		cached, _ := newCached(t, 0)
		_, err := cached.Open(ctx, "absent")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("size cap evicts", func(t *testing.T) {
		cached, backend := newCached(t, 8)
		require.NoError(t, cached.Put(ctx, "a", []byte("aaaa")))
		require.NoError(t, cached.Put(ctx, "b", []byte("bbbb")))
		require.NoError(t, cached.Put(ctx, "c", []byte("cccc")))

		for _, name := range []string{"a", "b", "c"} {
			blob, err := cached.Open(ctx, name)
			require.NoError(t, err)
			blob.Close()
		}
		// Cap of 8 holds two 4-byte blobs at most, so at least one open
		// per name reached the backend and something was evicted.
		assert.GreaterOrEqual(t, backend.opens.Load(), int64(3))
	})

	t.Run("put during fill is not overwritten by stale bytes", func(t *testing.T) {
		backend := &gatedStore{
			BlobStore: NewMemoryStore(),
			entered:   make(chan struct{}),
			proceed:   make(chan struct{}),
		}
		cached := NewCachingStore(backend, 0)
		require.NoError(t, cached.Put(ctx, "a", []byte("v1")))

		done := make(chan []byte, 1)
		go func() {
			blob, err := cached.Open(ctx, "a")
			if !assert.NoError(t, err) {
				done <- nil
				return
			}
			data, err := ReadAll(blob)
			assert.NoError(t, err)
			blob.Close()
			done <- data
		}()

		// The fill is inside the backend open; replace the blob before
		// letting it finish.
		<-backend.entered
		require.NoError(t, cached.Put(ctx, "a", []byte("v2")))
		close(backend.proceed)

		// The in-flight reader may observe either version.
		<-done

		// But the cache must serve v2 afterwards, not the stale fill.
		blob, err := cached.Open(ctx, "a")
		require.NoError(t, err)
		defer blob.Close()
		data, err := ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
	})

	t.Run("concurrent misses collapse", func(t *testing.T) {
		cached, backend := newCached(t, 0)
		require.NoError(t, cached.Put(ctx, "hot", []byte("payload")))

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				blob, err := cached.Open(ctx, "hot")
				if assert.NoError(t, err) {
					blob.Close()
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.LessOrEqual(t, backend.opens.Load(), int64(8))
		assert.GreaterOrEqual(t, backend.opens.Load(), int64(1))
	})
}
