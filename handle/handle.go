// Package handle exports containers across an ownership boundary as
// opaque, forgeable-proof handles.
//
// A caller that cannot hold Go pointers (a foreign runtime, a wire
// protocol, a session table) is given a Handle instead: a slot index
// plus a generation counter. The Registry resolves handles back to live
// containers, counts references, and detects use-after-free: once a
// slot's refcount reaches zero the slot's generation advances, so every
// outstanding handle to the old occupant fails with ErrStaleHandle
// instead of reaching a recycled container.
//
// Handles are scoped to the Registry that issued them; there is no
// package-level registry.
package handle

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleHandle is returned when a handle's generation does not match
	// its slot, meaning the referenced container was already freed.
	ErrStaleHandle = errors.New("handle: stale handle")

	// ErrUnknownKind is returned when exporting a value under a kind tag
	// the registry has no registration for.
	ErrUnknownKind = errors.New("handle: unknown kind")
)

// Handle is an opaque reference to a registered container. The zero
// Handle is never issued and never resolves.
type Handle struct {
	id  uint32
	gen uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("handle(%d@%d)", h.id, h.gen)
}
