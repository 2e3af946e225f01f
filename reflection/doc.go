// Package reflection provides static reflection over Go types.
//
// Nothing is discovered at run time: every type describes itself through a
// Provider, written by hand or generated by cmd/typereflect, and registered
// from an init function. The package aggregates those declarations along the
// declared parent relations and exposes the result.
//
// Key types:
//   - Info / Provider: a type's own attributes, methods, parents and used types
//   - TypeDescriptor: the aggregated view, own entries first, then each
//     ancestor's in depth-first pre-order, without de-duplication
//   - Table: ordered key/value metadata with exact-type lookups
//   - Signature: method shape plus Mutating/Fallible qualifiers
//   - Binding: a descriptor attached to a live *T
//
// Lookups never fail: a missing name, a name with another type or signature,
// and a type without a provider are all "not found".
package reflection
