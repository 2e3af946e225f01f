// Package schema projects reflection descriptors onto JSON Schema.
//
// A reflected type becomes an object whose properties are its attributes in
// aggregated order. Attributes whose type is itself reflected point into
// $defs; every other type is described by the jsonschema reflector.
package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"typereflect/reflection"
)

// DescriptionKey is the metadata key copied into property descriptions.
const DescriptionKey = "description"

const defsPrefix = "#/$defs/"

// Builder renders schemas from the descriptors of one registry.
type Builder struct {
	registry  *reflection.Registry
	reflector *jsonschema.Reflector
}

// New returns a Builder over r; nil means reflection.Default.
func New(r *reflection.Registry) *Builder {
	if r == nil {
		r = reflection.Default
	}

	return &Builder{
		registry: r,
		reflector: &jsonschema.Reflector{
			DoNotReference: true,
			Anonymous:      true,
		},
	}
}

// For returns the schema of T using the default registry.
func For[T any]() *jsonschema.Schema {
	return New(nil).Schema(reflect.TypeFor[T]())
}

// Schema returns the schema of t. Reflected types nested anywhere below t
// are collected in the $defs of the returned root.
func (b *Builder) Schema(t reflect.Type) *jsonschema.Schema {
	t = deref(t)
	if t == nil {
		return &jsonschema.Schema{}
	}

	td := b.registry.Describe(t)
	if !td.Reflectible() {
		return b.leaf(t)
	}

	r := &run{builder: b, defs: jsonschema.Definitions{}, keys: map[reflect.Type]string{}}

	root := r.object(td)
	if len(r.defs) > 0 {
		root.Definitions = r.defs
	}

	return root
}

// run holds the definitions collected while rendering one root.
type run struct {
	builder *Builder
	defs    jsonschema.Definitions
	keys    map[reflect.Type]string
}

func (r *run) object(td *reflection.TypeDescriptor) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 "object",
		Title:                title(td),
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}

	td.ForEachAttribute(func(a reflection.AttributeDescriptor) bool {
		// A derived attribute hides inherited ones of the same name.
		if _, taken := s.Properties.Get(a.Name); taken {
			return false
		}

		p := r.typeSchema(a.Type)
		p.ReadOnly = a.ReadOnly

		if desc, ok := reflection.GetMetadata[string](a.Metadata, DescriptionKey); ok {
			p.Description = desc
		}

		s.Properties.Set(a.Name, p)

		return false
	})

	return s
}

func (r *run) typeSchema(t reflect.Type) *jsonschema.Schema {
	t = deref(t)

	if td := r.builder.registry.Describe(t); td.Reflectible() {
		return &jsonschema.Schema{Ref: defsPrefix + r.define(td)}
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			break
		}

		return &jsonschema.Schema{Type: "array", Items: r.typeSchema(t.Elem())}
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return &jsonschema.Schema{Type: "object", AdditionalProperties: r.typeSchema(t.Elem())}
		}
	}

	return r.builder.leaf(t)
}

// define renders td into $defs once and returns its key. The key is claimed
// before rendering so self references terminate.
func (r *run) define(td *reflection.TypeDescriptor) string {
	if key, ok := r.keys[td.Type()]; ok {
		return key
	}

	key := td.Type().String()
	r.keys[td.Type()] = key
	r.defs[key] = r.object(td)

	return key
}

// leaf describes a type without a provider.
func (b *Builder) leaf(t reflect.Type) *jsonschema.Schema {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128, reflect.Invalid:
		return &jsonschema.Schema{}
	}

	s := b.reflector.ReflectFromType(t)
	s.Version = ""
	s.Definitions = nil

	return s
}

func title(td *reflection.TypeDescriptor) string {
	if name, ok := td.ClassName(); ok {
		return name
	}

	return td.Type().Name()
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
