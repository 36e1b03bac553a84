package vector

import (
	"fmt"

	"github.com/torch/vector/handle"
)

// Handle kind tags. Scalar variants carry the element kind in the tag so
// a resolve under the wrong type parameter fails instead of panicking on
// the assertion.
const bytesTag = "bytes"

func atomicTag(k Kind) string  { return "atomic:" + k.String() }
func numericTag(k Kind) string { return "numeric:" + k.String() }

var scalarKinds = []Kind{
	KindInt8, KindUint8, KindInt16, KindInt32, KindInt64,
	KindFloat32, KindFloat64,
}

type releaser interface {
	release()
}

func freeContainer(v any) {
	if r, ok := v.(releaser); ok {
		r.release()
	}
}

// RegisterKinds registers every container kind on reg. Freed containers
// drop their buffers, so resolved references must not outlive the last
// handle reference.
func RegisterKinds(reg *handle.Registry) {
	reg.RegisterKind(handle.Kind{Tag: bytesTag, Free: freeContainer})
	for _, k := range scalarKinds {
		reg.RegisterKind(handle.Kind{Tag: atomicTag(k), Free: freeContainer})
		reg.RegisterKind(handle.Kind{Tag: numericTag(k), Free: freeContainer})
	}
}

// ExportAtomic registers v on reg and returns an opaque handle holding
// one reference.
func ExportAtomic[T Scalar](reg *handle.Registry, v *Atomic[T]) (handle.Handle, error) {
	return reg.Export(atomicTag(KindOf[T]()), v)
}

// ResolveAtomic returns the Atomic container h refers to, holding a new
// reference: the view stays valid after the exporter releases, until the
// caller releases h in turn. Resolving a freed handle fails with
// handle.ErrStaleHandle; resolving under the wrong container or element
// kind fails with ErrKindMismatch and takes no reference.
func ResolveAtomic[T Scalar](reg *handle.Registry, h handle.Handle) (*Atomic[T], error) {
	value, tag, err := reg.Resolve(h)
	if err != nil {
		return nil, err
	}
	if want := atomicTag(KindOf[T]()); tag != want {
		_ = reg.Release(h)
		return nil, fmt.Errorf("%w: handle holds %q, want %q", ErrKindMismatch, tag, want)
	}
	return value.(*Atomic[T]), nil
}

// ExportBytes registers v on reg and returns an opaque handle holding
// one reference.
func ExportBytes(reg *handle.Registry, v *Bytes) (handle.Handle, error) {
	return reg.Export(bytesTag, v)
}

// ResolveBytes returns the Bytes container h refers to, holding a new
// reference; see ResolveAtomic.
func ResolveBytes(reg *handle.Registry, h handle.Handle) (*Bytes, error) {
	value, tag, err := reg.Resolve(h)
	if err != nil {
		return nil, err
	}
	if tag != bytesTag {
		_ = reg.Release(h)
		return nil, fmt.Errorf("%w: handle holds %q, want %q", ErrKindMismatch, tag, bytesTag)
	}
	return value.(*Bytes), nil
}

// ExportNumeric registers v on reg and returns an opaque handle holding
// one reference.
func ExportNumeric[T Scalar](reg *handle.Registry, v *Numeric[T]) (handle.Handle, error) {
	return reg.Export(numericTag(KindOf[T]()), v)
}

// ResolveNumeric returns the Numeric container h refers to, holding a
// new reference; see ResolveAtomic.
func ResolveNumeric[T Scalar](reg *handle.Registry, h handle.Handle) (*Numeric[T], error) {
	value, tag, err := reg.Resolve(h)
	if err != nil {
		return nil, err
	}
	if want := numericTag(KindOf[T]()); tag != want {
		_ = reg.Release(h)
		return nil, fmt.Errorf("%w: handle holds %q, want %q", ErrKindMismatch, tag, want)
	}
	return value.(*Numeric[T]), nil
}
