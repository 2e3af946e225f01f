package reflection

import (
	"fmt"
	"reflect"
)

// Binding attaches a TypeDescriptor to a live instance. It holds a pointer to
// the instance and never copies it: everything bound through it is valid as
// long as the instance is.
type Binding struct {
	td   *TypeDescriptor
	recv reflect.Value
}

// Bind binds obj, which must be a non-nil pointer to the described type.
func (td *TypeDescriptor) Bind(obj any) (Binding, bool) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem() != td.typ {
		return Binding{td: td}, false
	}

	return Binding{td: td, recv: v}, true
}

// Bind binds obj to the descriptor of T from the Default registry.
func Bind[T any](obj *T) Binding {
	b, _ := Describe[T]().Bind(obj)
	return b
}

// Descriptor returns the bound descriptor.
func (b Binding) Descriptor() *TypeDescriptor {
	return b.td
}

// ForEachAttribute calls visit with each attribute bound to the instance, in
// aggregated order, until visit returns true. Attributes that cannot reach
// the instance's storage are passed too, with Valid reporting false.
func (b Binding) ForEachAttribute(visit func(BoundAttribute) bool) bool {
	if b.td == nil {
		return false
	}

	return b.td.ForEachAttribute(func(a AttributeDescriptor) bool {
		return visit(b.attribute(a))
	})
}

// ForEachMethod calls visit with each method bound to the instance, in
// aggregated order, until visit returns true.
func (b Binding) ForEachMethod(visit func(BoundMethod) bool) bool {
	if b.td == nil {
		return false
	}

	return b.td.ForEachMethod(func(m MethodDescriptor) bool {
		return visit(b.method(m))
	})
}

// Attribute returns the first attribute called name bound to the instance.
// It reports false when there is none or it is not reachable.
func (b Binding) Attribute(name string) (BoundAttribute, bool) {
	if b.td == nil {
		return BoundAttribute{}, false
	}

	a, ok := b.td.Attribute(name)
	if !ok {
		return BoundAttribute{}, false
	}

	bound := b.attribute(a)

	return bound, bound.Valid()
}

// Method returns the first method called name bound to the instance.
func (b Binding) Method(name string) (BoundMethod, bool) {
	if b.td == nil {
		return BoundMethod{}, false
	}

	m, ok := b.td.Method(name)
	if !ok {
		return BoundMethod{}, false
	}

	bound := b.method(m)

	return bound, bound.Valid()
}

func (b Binding) attribute(a AttributeDescriptor) BoundAttribute {
	ptr, _ := a.pointer(b.recv)
	return BoundAttribute{AttributeDescriptor: a, ptr: ptr}
}

func (b Binding) method(m MethodDescriptor) BoundMethod {
	recv, _ := m.receiver(b.recv)
	return BoundMethod{MethodDescriptor: m, recv: recv}
}

// BoundAttribute is an attribute bound to the storage of one instance.
type BoundAttribute struct {
	AttributeDescriptor

	ptr reflect.Value
}

// Valid reports whether the attribute reaches storage in the instance.
func (a BoundAttribute) Valid() bool {
	return a.ptr.IsValid()
}

// Addr returns a pointer to the field (a *V for a field of type V), or nil.
func (a BoundAttribute) Addr() any {
	if !a.Valid() {
		return nil
	}

	return a.ptr.Interface()
}

// Get returns the current value of the field, or nil.
func (a BoundAttribute) Get() any {
	if !a.Valid() {
		return nil
	}

	return a.ptr.Elem().Interface()
}

// Value returns the addressable field value, or the zero Value.
func (a BoundAttribute) Value() reflect.Value {
	if !a.Valid() {
		return reflect.Value{}
	}

	return a.ptr.Elem()
}

// Set writes v into the field. v must be assignable to the declared type.
func (a BoundAttribute) Set(v any) error {
	switch {
	case !a.Valid():
		return fmt.Errorf("set %s: %w", a.Name, ErrUnbound)
	case a.ReadOnly:
		return fmt.Errorf("set %s: %w", a.Name, ErrReadOnly)
	}

	val, err := argument(v, a.Type)
	if err != nil {
		return fmt.Errorf("set %s: %w", a.Name, err)
	}

	a.ptr.Elem().Set(val)

	return nil
}

// BoundMethod is a method bound to one instance.
type BoundMethod struct {
	MethodDescriptor

	recv reflect.Value
}

// Valid reports whether the method reaches a receiver in the instance.
func (m BoundMethod) Valid() bool {
	return m.recv.IsValid()
}

// Call invokes the method with args and returns its results. The error
// result of a Fallible method is returned as the error and left out of the
// results.
func (m BoundMethod) Call(args ...any) ([]any, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("call %s: %w", m.Name, ErrUnbound)
	}

	in, err := m.arguments(args)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", m.Name, err)
	}

	out := m.call(m.recv, in)

	var callErr error
	if m.Signature.Qualifiers&Fallible != 0 {
		last := out[len(out)-1]
		out = out[:len(out)-1]

		if !last.IsNil() {
			callErr = last.Interface().(error)
		}
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}

	return results, callErr
}

func (m BoundMethod) arguments(args []any) ([]reflect.Value, error) {
	params := m.Signature.In
	fixed := len(params)

	if m.Signature.Variadic {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrArgument, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgument, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := m.paramType(i)

		v, err := argument(arg, want)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", ErrArgument, i, err)
		}

		in[i] = v
	}

	return in, nil
}

func (m BoundMethod) paramType(i int) reflect.Type {
	params := m.Signature.In
	if m.Signature.Variadic && i >= len(params)-1 {
		return params[len(params)-1].Elem()
	}

	return params[i]
}

// argument converts v into a value of type want without conversions other
// than assignability.
func argument(v any, want reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch want.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: nil is not a %s", ErrTypeMismatch, want)
		}
	}

	val := reflect.ValueOf(v)
	if !val.Type().AssignableTo(want) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, val.Type(), want)
	}

	return val, nil
}
