package blobstore

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a BlobStore with a whole-blob read-through cache.
// Snapshots are immutable and read in full, so caching whole blobs keyed
// by name is enough; Put and Delete invalidate. Concurrent cache misses
// for the same name are collapsed into one backend fetch.
type CachingStore struct {
	inner    BlobStore
	maxBytes int64

	group singleflight.Group

	mu       sync.RWMutex
	cache    map[string][]byte
	versions map[string]uint64
	curBytes int64
}

// NewCachingStore creates a CachingStore holding at most maxBytes of
// cached blob data. maxBytes <= 0 disables the size cap.
func NewCachingStore(inner BlobStore, maxBytes int64) *CachingStore {
	return &CachingStore{
		inner:    inner,
		maxBytes: maxBytes,
		cache:    make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

// Open returns the cached blob when present, otherwise fetches it from
// the backend and caches the contents.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	s.mu.RLock()
	data, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return &memoryBlob{data: data}, nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		// The entry version is read before the backend fetch; if a Put or
		// Delete invalidates mid-fill, the version moves and the stale
		// bytes are not cached.
		s.mu.RLock()
		version := s.versions[name]
		s.mu.RUnlock()

		b, err := s.inner.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer b.Close()

		data, err := ReadAll(b)
		if err != nil {
			return nil, err
		}
		s.insert(name, data, version)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: v.([]byte)}, nil
}

// insert adds a blob to the cache, evicting entries until the total fits
// under the cap. Eviction order is arbitrary; snapshot working sets are
// small and re-fetch is cheap. The insert is dropped if the entry was
// invalidated after version was read.
func (s *CachingStore) insert(name string, data []byte, version uint64) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[name] != version {
		return
	}

	if old, ok := s.cache[name]; ok {
		s.curBytes -= int64(len(old))
	}
	s.cache[name] = data
	s.curBytes += int64(len(data))

	for evict := range s.cache {
		if s.maxBytes <= 0 || s.curBytes <= s.maxBytes {
			break
		}
		if evict == name {
			continue
		}
		s.curBytes -= int64(len(s.cache[evict]))
		delete(s.cache, evict)
	}
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	s.versions[name]++
	if old, ok := s.cache[name]; ok {
		s.curBytes -= int64(len(old))
		delete(s.cache, name)
	}
	s.mu.Unlock()

	// New opens must not join a fill that started before the invalidate.
	s.group.Forget(name)
}

// Put writes through to the backend and invalidates the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob from the backend and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the backend.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
