package analyze

import (
	"fmt"
	"go/types"
	"sort"

	"typereflect/internal/diagnostic"
)

// GeneratedHeader is the first line of every generated provider file.
const GeneratedHeader = "// Code generated by typereflect. DO NOT EDIT."

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "typereflect/examples/shapes"
	Name    string // e.g., "Rect"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Mode selects which facets of a type are reflected by default.
type Mode int

//go:generate go tool stringer -type=Mode -linecomment -output=mode_string.go

const (
	ModeAll        Mode = iota // all
	ModeAttributes             // attributes
	ModeMethods                // methods
)

// ParseMode parses the argument of a generate directive. An empty argument
// means ModeAll.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", ModeAll.String():
		return ModeAll, nil
	case ModeAttributes.String():
		return ModeAttributes, nil
	case ModeMethods.String():
		return ModeMethods, nil
	default:
		return ModeAll, fmt.Errorf("unknown generate mode %q (want all, attributes or methods)", s)
	}
}

// IncludesAttributes reports whether fields are reflected without an explicit
// on directive.
func (m Mode) IncludesAttributes() bool {
	return m == ModeAll || m == ModeAttributes
}

// IncludesMethods reports whether methods are reflected without an explicit
// on directive.
func (m Mode) IncludesMethods() bool {
	return m == ModeAll || m == ModeMethods
}

// TypeInfo describes an annotated type and what to reflect of it.
type TypeInfo struct {
	ID        TypeID
	ClassName string
	Mode      Mode
	File      string // declaring file
	Pos       string // "file:line:col" of the declaration

	Attributes []FieldInfo
	Methods    []MethodInfo
	Parents    []RelationInfo
	UsedTypes  []RelationInfo

	// Imports maps the package names used by metadata expressions to their
	// import paths.
	Imports map[string]string

	GoType *types.Named
}

// FieldInfo describes a reflected struct field.
type FieldInfo struct {
	Name     string
	Type     types.Type
	Exported bool
	ReadOnly bool
	Index    int      // field index in the struct
	Metadata []string // Go expressions, alternating keys and values
}

// MethodInfo describes a reflected method.
type MethodInfo struct {
	Name            string
	PointerReceiver bool
	Signature       *types.Signature
	Metadata        []string
}

// RelationInfo describes a parent or a used type.
type RelationInfo struct {
	Name     string // as written, or the embedded type for embedded parents
	Type     types.Type
	Embedded bool
	Metadata []string
}

// TypeGraph holds all annotated types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all annotated types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
	// Diagnostics collects problems found while scanning.
	Diagnostics diagnostic.Diagnostics
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Sorted returns all types ordered by TypeID.
func (g *TypeGraph) Sorted() []*TypeInfo {
	out := make([]*TypeInfo, 0, len(g.Types))
	for _, t := range g.Types {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string // Import path
	Name  string // Package name
	Dir   string // Source directory
	Files []*FileInfo
}

// FileInfo lists the annotated types declared in one source file, in source
// order.
type FileInfo struct {
	Path  string
	Types []TypeID
}
