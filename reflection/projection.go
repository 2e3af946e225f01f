package reflection

import (
	"reflect"
	"unsafe"
)

// projection maps a pointer to one type onto a pointer to a type reachable
// from it (an embedded parent, usually). It reports false when the target is
// not reachable from this particular value, e.g. through a nil embedded pointer.
type projection func(reflect.Value) (reflect.Value, bool)

// then composes p with q: the result applies p first.
func (p projection) then(q projection) projection {
	if p == nil {
		return q
	}

	if q == nil {
		return p
	}

	return func(v reflect.Value) (reflect.Value, bool) {
		mid, ok := p(v)
		if !ok {
			return reflect.Value{}, false
		}

		return q(mid)
	}
}

// apply runs the projection on a pointer value. A nil projection is the
// identity.
func (p projection) apply(v reflect.Value) (reflect.Value, bool) {
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, false
	}

	if p == nil {
		return v, true
	}

	return p(v)
}

// unreachable is the projection of a parent that cannot be reached from the
// child's storage.
func unreachable(reflect.Value) (reflect.Value, bool) {
	return reflect.Value{}, false
}

// embeddedProjection finds parent as an embedded field (by value or by
// pointer) of child and returns the projection to it. Promoted embeddings are
// found as well; ambiguous ones, two at the same shallowest depth, are not.
// Fields are matched by type, so instantiated generic parents are found even
// though the field is named after the generic type.
func embeddedProjection(child, parent reflect.Type) (projection, bool) {
	if child.Kind() != reflect.Struct || parent.Name() == "" {
		return nil, false
	}

	var (
		field     reflect.StructField
		found     bool
		ambiguous bool
	)

	for _, f := range reflect.VisibleFields(child) {
		// An empty name marks a field cancelled by another of the same name
		// at the same depth.
		if !f.Anonymous || f.Name == "" || (f.Type != parent && f.Type != reflect.PointerTo(parent)) {
			continue
		}

		switch {
		case !found || len(f.Index) < len(field.Index):
			field, found, ambiguous = f, true, false
		case len(f.Index) == len(field.Index):
			ambiguous = true
		}
	}

	if !found || ambiguous {
		return nil, false
	}

	byPointer := field.Type != parent
	index := field.Index

	return func(v reflect.Value) (reflect.Value, bool) {
		f, err := v.Elem().FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, false
		}

		// Embedded types are often unexported; re-derive the address so the
		// result is usable as a receiver or through Interface.
		addr := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr()))
		if !byPointer {
			return addr, true
		}

		ptr := addr.Elem()
		if ptr.IsNil() {
			return reflect.Value{}, false
		}

		return ptr, true
	}, true
}
