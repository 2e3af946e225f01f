package reflection

import (
	"fmt"
	"reflect"
)

// AttributeDescriptor describes a field of a type: its name, declared type,
// metadata and an accessor to its storage.
type AttributeDescriptor struct {
	Name     string
	Type     reflect.Type // declared type of the field
	Owner    reflect.Type // type that declares the field
	ReadOnly bool
	Metadata Table

	field   func(owner reflect.Value) reflect.Value
	project projection
}

// Field declares an attribute of T stored at the location returned by field.
// Metadata is given as alternating keys and values.
//
//	reflection.Field("Width", func(s *Rect) *float64 { return &s.Width }, "unit", "px")
func Field[T, V any](name string, field func(*T) *V, kv ...any) AttributeDescriptor {
	if field == nil {
		panic(fmt.Sprintf("reflection: nil accessor for attribute %q", name))
	}

	return AttributeDescriptor{
		Name:     name,
		Type:     reflect.TypeFor[V](),
		Owner:    reflect.TypeFor[T](),
		Metadata: Metadata(kv...),
		field: func(owner reflect.Value) reflect.Value {
			return reflect.ValueOf(field(owner.Interface().(*T)))
		},
	}
}

// ReadOnlyField declares an attribute that bound accessors refuse to write.
func ReadOnlyField[T, V any](name string, field func(*T) *V, kv ...any) AttributeDescriptor {
	a := Field(name, field, kv...)
	a.ReadOnly = true

	return a
}

// String returns "Name Type".
func (a AttributeDescriptor) String() string {
	return a.Name + " " + typeName(a.Type)
}

// pointer returns a pointer to the attribute's storage inside recv, which
// must be a pointer to the type the descriptor was aggregated for.
func (a AttributeDescriptor) pointer(recv reflect.Value) (reflect.Value, bool) {
	if a.field == nil {
		return reflect.Value{}, false
	}

	owner, ok := a.project.apply(recv)
	if !ok {
		return reflect.Value{}, false
	}

	p := a.field(owner)
	if !p.IsValid() || p.IsNil() {
		return reflect.Value{}, false
	}

	return p, true
}

// rebased returns a copy reachable from a descendant through p.
func (a AttributeDescriptor) rebased(p projection) AttributeDescriptor {
	a.project = p.then(a.project)
	return a
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
