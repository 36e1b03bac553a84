package handle

import (
	"fmt"
	"sync"
)

// Kind describes one exportable container type. Free releases the
// container's resources when its last reference is dropped.
type Kind struct {
	// Tag names the kind on the wire (e.g. "atomic:float32").
	Tag string

	// Free is called exactly once, after the last Release. May be nil.
	Free func(value any)
}

type slot struct {
	value any
	tag   string
	gen   uint32
	refs  int32
	live  bool
}

// Registry issues and resolves handles. Slots are recycled through a
// free list; each reuse advances the slot's generation so handles to the
// previous occupant turn stale rather than aliasing the new one.
//
// Safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
	kinds map[string]Kind
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Kind),
	}
}

// RegisterKind registers a container kind. Re-registering a tag replaces
// the previous registration.
func (r *Registry) RegisterKind(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[k.Tag] = k
}

// Export registers value under the given kind tag and returns a handle
// with an initial reference count of one.
func (r *Registry) Export(tag string, value any) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kinds[tag]; !ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}

	var id uint32
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		id = uint32(len(r.slots) - 1)
	}

	s := &r.slots[id]
	s.gen++ // generations start at 1, so the zero Handle never resolves
	s.value = value
	s.tag = tag
	s.refs = 1
	s.live = true

	return Handle{id: id, gen: s.gen}, nil
}

// lookup returns the live slot h points at. Caller holds r.mu.
func (r *Registry) lookup(h Handle) (*slot, error) {
	if int(h.id) >= len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := &r.slots[h.id]
	if !s.live || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}

// Resolve returns the container h refers to and its kind tag, taking a
// new reference on the slot. The resolved view keeps the container alive
// on its own: every successful Resolve must be paired with a Release,
// independent of the exporting reference.
func (r *Registry) Resolve(h Handle) (any, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(h)
	if err != nil {
		return nil, "", err
	}
	s.refs++
	return s.value, s.tag, nil
}

// Retain adds a reference to the container h refers to.
func (r *Registry) Retain(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	s.refs++
	return nil
}

// Release drops a reference. When the last reference is dropped the
// kind's Free runs, the slot is recycled, and every outstanding handle
// to it becomes stale.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	s, err := r.lookup(h)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	s.refs--
	if s.refs > 0 {
		r.mu.Unlock()
		return nil
	}

	value := s.value
	freeFn := r.kinds[s.tag].Free
	s.value = nil
	s.tag = ""
	s.live = false
	r.free = append(r.free, h.id)
	r.mu.Unlock()

	// Free runs outside the lock; it may call back into the registry.
	if freeFn != nil {
		freeFn(value)
	}
	return nil
}

// Live returns the number of containers currently registered.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.slots {
		if r.slots[i].live {
			n++
		}
	}
	return n
}
