package reflection

import (
	"fmt"
	"reflect"
)

// MethodDescriptor describes a method of a type: its name, full signature,
// metadata and an invoker.
type MethodDescriptor struct {
	Name      string
	Owner     reflect.Type // type that declares the method
	Signature Signature
	Metadata  Table

	expr    reflect.Value // method expression, receiver first
	project projection
}

// Method declares a method of T from a method expression. A pointer receiver
// expression ((*T).M) yields a Mutating method and a value receiver
// expression (T.M) a read-only one; a trailing error result makes it Fallible.
//
//	reflection.Method[Rect]("Area", Rect.Area)
//	reflection.Method[Rect]("Scale", (*Rect).Scale, "doc", "scales in place")
//
// Anything other than a method expression of T panics.
func Method[T any](name string, expr any, kv ...any) MethodDescriptor {
	owner := reflect.TypeFor[T]()

	v := reflect.ValueOf(expr)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("reflection: method %q of %s: %T is not a method expression", name, owner, expr))
	}

	ft := v.Type()
	if ft.NumIn() == 0 || (ft.In(0) != owner && ft.In(0) != reflect.PointerTo(owner)) {
		panic(fmt.Sprintf("reflection: method %q: %s does not take a %s receiver", name, ft, owner))
	}

	return MethodDescriptor{
		Name:      name,
		Owner:     owner,
		Signature: signatureOfExpr(ft),
		Metadata:  Metadata(kv...),
		expr:      v,
	}
}

// String returns "Name func(...) ... qualifiers".
func (m MethodDescriptor) String() string {
	return m.Name + " " + m.Signature.String()
}

// receiver returns the receiver argument for recv, a pointer to the type the
// descriptor was aggregated for.
func (m MethodDescriptor) receiver(recv reflect.Value) (reflect.Value, bool) {
	if !m.expr.IsValid() {
		return reflect.Value{}, false
	}

	owner, ok := m.project.apply(recv)
	if !ok {
		return reflect.Value{}, false
	}

	if m.Signature.Qualifiers&Mutating == 0 {
		return owner.Elem(), true
	}

	return owner, true
}

// call invokes the method on a prepared receiver. Variadic arguments are
// passed one by one.
func (m MethodDescriptor) call(recv reflect.Value, args []reflect.Value) []reflect.Value {
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, recv)
	in = append(in, args...)

	return m.expr.Call(in)
}

// bindAs returns a function of type fn that calls the method on recv.
func (m MethodDescriptor) bindAs(fn reflect.Type, recv reflect.Value) reflect.Value {
	return reflect.MakeFunc(fn, func(args []reflect.Value) []reflect.Value {
		if fn.IsVariadic() {
			return m.expr.CallSlice(append([]reflect.Value{recv}, args...))
		}

		return m.expr.Call(append([]reflect.Value{recv}, args...))
	})
}

func (m MethodDescriptor) rebased(p projection) MethodDescriptor {
	m.project = p.then(m.project)
	return m
}
