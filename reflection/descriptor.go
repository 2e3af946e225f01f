package reflection

import (
	"reflect"
	"slices"
)

// TypeDescriptor is the aggregated view of a type: its own facets followed
// by everything inherited from its ancestors. It is immutable and shared.
type TypeDescriptor struct {
	typ         reflect.Type
	className   string
	reflectible bool
	attributes  []AttributeDescriptor
	methods     []MethodDescriptor
	parents     []ParentDescriptor
	usedTypes   []UsedTypeDescriptor
}

// Type returns the described type.
func (td *TypeDescriptor) Type() reflect.Type {
	return td.typ
}

// ClassName returns the name the type declares for itself. Class names are
// not inherited.
func (td *TypeDescriptor) ClassName() (string, bool) {
	return td.className, td.className != ""
}

// Reflectible reports whether the type has a provider.
func (td *TypeDescriptor) Reflectible() bool {
	return td.reflectible
}

// Attributes returns a copy of the aggregated attributes.
func (td *TypeDescriptor) Attributes() []AttributeDescriptor {
	return slices.Clone(td.attributes)
}

// Methods returns a copy of the aggregated methods.
func (td *TypeDescriptor) Methods() []MethodDescriptor {
	return slices.Clone(td.methods)
}

// Parents returns a copy of the flattened parents.
func (td *TypeDescriptor) Parents() []ParentDescriptor {
	return slices.Clone(td.parents)
}

// UsedTypes returns a copy of the aggregated used types.
func (td *TypeDescriptor) UsedTypes() []UsedTypeDescriptor {
	return slices.Clone(td.usedTypes)
}

// ForEachAttribute calls visit for each attribute in aggregated order until
// visit returns true, and reports whether it did.
func (td *TypeDescriptor) ForEachAttribute(visit func(AttributeDescriptor) bool) bool {
	return forEach(td.attributes, visit)
}

// ForEachMethod calls visit for each method in aggregated order until visit
// returns true, and reports whether it did.
func (td *TypeDescriptor) ForEachMethod(visit func(MethodDescriptor) bool) bool {
	return forEach(td.methods, visit)
}

// ForEachParent calls visit for each parent in flattened order until visit
// returns true, and reports whether it did.
func (td *TypeDescriptor) ForEachParent(visit func(ParentDescriptor) bool) bool {
	return forEach(td.parents, visit)
}

// ForEachUsedType calls visit for each used type in aggregated order until
// visit returns true, and reports whether it did.
func (td *TypeDescriptor) ForEachUsedType(visit func(UsedTypeDescriptor) bool) bool {
	return forEach(td.usedTypes, visit)
}

// Attribute returns the first attribute called name.
func (td *TypeDescriptor) Attribute(name string) (AttributeDescriptor, bool) {
	var found AttributeDescriptor

	ok := td.ForEachAttribute(func(a AttributeDescriptor) bool {
		if a.Name != name {
			return false
		}

		found = a

		return true
	})

	return found, ok
}

// AttributeOfType returns the first attribute called name whose declared type
// is exactly typ. An attribute with the right name and another type is not a
// match.
func (td *TypeDescriptor) AttributeOfType(name string, typ reflect.Type) (AttributeDescriptor, bool) {
	var found AttributeDescriptor

	ok := td.ForEachAttribute(func(a AttributeDescriptor) bool {
		if a.Name != name || a.Type != typ {
			return false
		}

		found = a

		return true
	})

	return found, ok
}

// Method returns the first method called name, whatever its signature.
func (td *TypeDescriptor) Method(name string) (MethodDescriptor, bool) {
	var found MethodDescriptor

	ok := td.ForEachMethod(func(m MethodDescriptor) bool {
		if m.Name != name {
			return false
		}

		found = m

		return true
	})

	return found, ok
}

// HasAttribute reports whether an attribute called name exists.
func (td *TypeDescriptor) HasAttribute(name string) bool {
	_, ok := td.Attribute(name)
	return ok
}

// HasMethod reports whether a method called name exists.
func (td *TypeDescriptor) HasMethod(name string) bool {
	_, ok := td.Method(name)
	return ok
}

// HasParent reports whether t appears among the flattened parents.
func (td *TypeDescriptor) HasParent(t reflect.Type) bool {
	return td.ForEachParent(func(p ParentDescriptor) bool { return p.Type == t })
}

// HasUsedType reports whether t appears among the used types.
func (td *TypeDescriptor) HasUsedType(t reflect.Type) bool {
	return td.ForEachUsedType(func(u UsedTypeDescriptor) bool { return u.Type == t })
}

// AttributeMetadata returns the metadata of the first attribute called name.
func (td *TypeDescriptor) AttributeMetadata(name string) (Table, bool) {
	a, ok := td.Attribute(name)
	return a.Metadata, ok
}

// MethodMetadata returns the metadata of the first method called name.
func (td *TypeDescriptor) MethodMetadata(name string) (Table, bool) {
	m, ok := td.Method(name)
	return m.Metadata, ok
}

// HasAttributeMetadata reports whether the first attribute called name has
// key in its metadata.
func (td *TypeDescriptor) HasAttributeMetadata(name string, key any) bool {
	meta, ok := td.AttributeMetadata(name)
	return ok && meta.Has(key)
}

// HasMethodMetadata reports whether the first method called name has key in
// its metadata.
func (td *TypeDescriptor) HasMethodMetadata(name string, key any) bool {
	meta, ok := td.MethodMetadata(name)
	return ok && meta.Has(key)
}

func forEach[E any](entries []E, visit func(E) bool) bool {
	for _, e := range entries {
		if visit(e) {
			return true
		}
	}

	return false
}
