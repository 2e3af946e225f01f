package reflection

import (
	"reflect"
	"strings"
)

// Qualifier is a bit set describing how a method treats its receiver and
// whether it can fail.
type Qualifier uint8

const (
	// Mutating marks a method with a pointer receiver. Methods without it
	// have a value receiver and cannot modify the instance.
	Mutating Qualifier = 1 << iota
	// Fallible marks a method whose last result is an error.
	Fallible
)

// ResolutionOrder is the order in which FindMethod tries qualifier variants
// of a bare call shape: read-only and infallible first, then mutating, then
// fallible, then mutating and fallible.
var ResolutionOrder = []Qualifier{0, Mutating, Fallible, Mutating | Fallible}

// String returns the qualifiers as "mutating|fallible", or "const" when none
// is set.
func (q Qualifier) String() string {
	var parts []string
	if q&Mutating != 0 {
		parts = append(parts, "mutating")
	}

	if q&Fallible != 0 {
		parts = append(parts, "fallible")
	}

	if len(parts) == 0 {
		return "const"
	}

	return strings.Join(parts, "|")
}

var errorType = reflect.TypeFor[error]()

// Shape is a call shape: parameter and result types, receiver excluded.
type Shape struct {
	In       []reflect.Type
	Out      []reflect.Type
	Variadic bool
}

// ShapeOf returns the shape of a function type verbatim.
func ShapeOf(fn reflect.Type) Shape {
	s := Shape{Variadic: fn.IsVariadic()}
	for i := range fn.NumIn() {
		s.In = append(s.In, fn.In(i))
	}

	for i := range fn.NumOut() {
		s.Out = append(s.Out, fn.Out(i))
	}

	return s
}

// ShapeFor returns the shape of the function type F.
func ShapeFor[F any]() Shape {
	return ShapeOf(reflect.TypeFor[F]())
}

// Equal reports whether both shapes have identical parameter and result
// types.
func (s Shape) Equal(o Shape) bool {
	return s.Variadic == o.Variadic && sameTypes(s.In, o.In) && sameTypes(s.Out, o.Out)
}

// String renders the shape as a Go function type.
func (s Shape) String() string {
	var b strings.Builder

	b.WriteString("func(")

	for i, t := range s.In {
		if i > 0 {
			b.WriteString(", ")
		}

		if s.Variadic && i == len(s.In)-1 {
			b.WriteString("..." + t.Elem().String())
			continue
		}

		b.WriteString(t.String())
	}

	b.WriteString(")")

	switch len(s.Out) {
	case 0:
	case 1:
		b.WriteString(" " + s.Out[0].String())
	default:
		names := make([]string, len(s.Out))
		for i, t := range s.Out {
			names[i] = t.String()
		}

		b.WriteString(" (" + strings.Join(names, ", ") + ")")
	}

	return b.String()
}

// withoutError strips a trailing error result and reports whether there was
// one.
func (s Shape) withoutError() (Shape, bool) {
	n := len(s.Out)
	if n == 0 || s.Out[n-1] != errorType {
		return s, false
	}

	s.Out = s.Out[:n-1]

	return s, true
}

// Signature is the full call signature of a method: its shape with the
// trailing error removed, plus qualifiers.
type Signature struct {
	Shape
	Qualifiers Qualifier
}

// Equal reports whether both signatures are structurally identical.
func (s Signature) Equal(o Signature) bool {
	return s.Qualifiers == o.Qualifiers && s.Shape.Equal(o.Shape)
}

// String renders the signature with its qualifiers, e.g.
// "func(float64) int const".
func (s Signature) String() string {
	return s.Shape.String() + " " + s.Qualifiers.String()
}

// signatureOfExpr derives the signature of a method expression whose first
// parameter is the receiver.
func signatureOfExpr(expr reflect.Type) Signature {
	full := ShapeOf(expr)
	var q Qualifier
	if full.In[0].Kind() == reflect.Pointer {
		q |= Mutating
	}

	full.In = full.In[1:]

	shape, fallible := full.withoutError()
	if fallible {
		q |= Fallible
	}

	return Signature{Shape: shape, Qualifiers: q}
}

// SignatureFor returns the full signature described by a method expression
// type such as func(*T, float64) int or func(T) (string, error).
func SignatureFor[M any]() Signature {
	mt := reflect.TypeFor[M]()
	if mt.Kind() != reflect.Func || mt.NumIn() == 0 {
		return Signature{}
	}

	return signatureOfExpr(mt)
}

// FindMethod resolves name against a bare call shape. Methods named name are
// compared against shape under each qualifier variant of ResolutionOrder; the
// first variant with a match wins, and within a variant the first method in
// aggregated order wins. A shape ending in error asks for a fallible method,
// so only the Fallible variants are tried.
func (td *TypeDescriptor) FindMethod(name string, shape Shape) (MethodDescriptor, bool) {
	if bare, fallible := shape.withoutError(); fallible {
		return td.resolve(name, bare, []Qualifier{Fallible, Mutating | Fallible})
	}

	return td.resolve(name, shape, ResolutionOrder)
}

// FindMethodExact resolves name against a fully qualified signature.
func (td *TypeDescriptor) FindMethodExact(name string, sig Signature) (MethodDescriptor, bool) {
	return td.resolve(name, sig.Shape, []Qualifier{sig.Qualifiers})
}

func (td *TypeDescriptor) resolve(name string, shape Shape, tiers []Qualifier) (MethodDescriptor, bool) {
	for _, q := range tiers {
		var found MethodDescriptor

		ok := td.ForEachMethod(func(m MethodDescriptor) bool {
			if m.Name != name || m.Signature.Qualifiers != q || !m.Signature.Shape.Equal(shape) {
				return false
			}

			found = m

			return true
		})
		if ok {
			return found, true
		}
	}

	return MethodDescriptor{}, false
}

func sameTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
