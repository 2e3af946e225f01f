package reflection

import (
	"fmt"
	"reflect"
)

// ParentDescriptor declares that a type inherits the attributes and methods
// of a base type. It is a reference to the base type's own provider, never
// ownership of it.
type ParentDescriptor struct {
	Type     reflect.Type
	Metadata Table

	via projection
}

// Parent declares P as a parent. The child reaches P's storage through the
// embedded field of type P or *P; a parent that is not embedded still shows
// up in the parents list, but its members cannot be bound to a child
// instance.
func Parent[P any](kv ...any) ParentDescriptor {
	return ParentDescriptor{
		Type:     reflect.TypeFor[P](),
		Metadata: Metadata(kv...),
	}
}

// ParentVia declares P as a parent of T reached through an explicit
// projection.
func ParentVia[T, P any](up func(*T) *P, kv ...any) ParentDescriptor {
	if up == nil {
		panic(fmt.Sprintf("reflection: nil projection to parent %s", reflect.TypeFor[P]()))
	}

	return ParentDescriptor{
		Type:     reflect.TypeFor[P](),
		Metadata: Metadata(kv...),
		via: func(v reflect.Value) (reflect.Value, bool) {
			p := up(v.Interface().(*T))
			if p == nil {
				return reflect.Value{}, false
			}

			return reflect.ValueOf(p), true
		},
	}
}

// String returns the parent type name.
func (p ParentDescriptor) String() string {
	return typeName(p.Type)
}

// projectionFrom returns how child reaches the parent's storage.
func (p ParentDescriptor) projectionFrom(child reflect.Type) projection {
	if p.via != nil {
		return p.via
	}

	if proj, ok := embeddedProjection(child, p.Type); ok {
		return proj
	}

	return unreachable
}

// UsedTypeDescriptor declares that a type depends on another type. It has no
// effect on attributes or methods.
type UsedTypeDescriptor struct {
	Type     reflect.Type
	Metadata Table
}

// Uses declares U as a used type.
func Uses[U any](kv ...any) UsedTypeDescriptor {
	return UsedTypeDescriptor{
		Type:     reflect.TypeFor[U](),
		Metadata: Metadata(kv...),
	}
}

// String returns the used type name.
func (u UsedTypeDescriptor) String() string {
	return typeName(u.Type)
}
