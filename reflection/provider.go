package reflection

import (
	"fmt"
	"reflect"
)

// Provider supplies the descriptors a type declares itself, without anything
// inherited. A type may implement Provider on its value or pointer receiver,
// or have one registered for it with Register.
type Provider interface {
	TypeInfo() Info
}

// Info is the declaration of a type's own facets. Every facet defaults to
// empty, and an empty facet is the same as an undeclared one.
type Info struct {
	// ClassName is the name reported by ClassName; empty means none.
	ClassName  string
	Attributes []AttributeDescriptor
	Methods    []MethodDescriptor
	Parents    []ParentDescriptor
	UsedTypes  []UsedTypeDescriptor
}

// TypeInfo returns i, so a plain Info can be registered as a Provider.
func (i Info) TypeInfo() Info {
	return i
}

var providerType = reflect.TypeFor[Provider]()

// selfProvided returns the Info of a type that implements Provider itself.
// Pointer types never do: *T implementing Provider describes T.
func selfProvided(t reflect.Type) (Info, bool) {
	switch {
	case t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer:
		return Info{}, false
	case t.Implements(providerType):
		return reflect.Zero(t).Interface().(Provider).TypeInfo(), true
	case reflect.PointerTo(t).Implements(providerType):
		return reflect.New(t).Interface().(Provider).TypeInfo(), true
	default:
		return Info{}, false
	}
}

// validate checks that every own member of info belongs to t.
func (i Info) validate(t reflect.Type) error {
	for _, a := range i.Attributes {
		if a.Owner != t {
			return fmt.Errorf("%w: attribute %q of %s is declared on %s", ErrOwnerMismatch, a.Name, t, typeName(a.Owner))
		}
	}

	for _, m := range i.Methods {
		if m.Owner != t {
			return fmt.Errorf("%w: method %q of %s is declared on %s", ErrOwnerMismatch, m.Name, t, typeName(m.Owner))
		}
	}

	for _, p := range i.Parents {
		if p.Type == nil {
			return fmt.Errorf("%w: parent of %s has no type", ErrOwnerMismatch, t)
		}
	}

	return nil
}
