// Package export writes the scanned model of annotated types as YAML, for
// review or for tools outside Go.
package export

import (
	"fmt"
	"go/types"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"typereflect/internal/analyze"
)

// Version of the export schema.
const Version = "1"

// Model is the exported view of a TypeGraph.
type Model struct {
	Version     string       `yaml:"version"`
	Packages    []Package    `yaml:"packages"`
	Diagnostics []Diagnostic `yaml:"diagnostics,omitempty"`
}

// Package lists the reflected types of one package.
type Package struct {
	Path  string `yaml:"path"`
	Name  string `yaml:"name"`
	Types []Type `yaml:"types"`
}

// Type is one reflected type.
type Type struct {
	Name       string     `yaml:"name"`
	ClassName  string     `yaml:"class_name"`
	Mode       string     `yaml:"mode"`
	Pos        string     `yaml:"pos,omitempty"`
	Attributes []Member   `yaml:"attributes,omitempty"`
	Methods    []Member   `yaml:"methods,omitempty"`
	Parents    []Relation `yaml:"parents,omitempty"`
	UsedTypes  []Relation `yaml:"used_types,omitempty"`
}

// Member is an attribute or a method.
type Member struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Qualifiers []string `yaml:"qualifiers,omitempty"`
	Metadata   Metadata `yaml:"metadata,omitempty"`
}

// Relation is a parent or a used type.
type Relation struct {
	Type     string   `yaml:"type"`
	Embedded bool     `yaml:"embedded,omitempty"`
	Metadata Metadata `yaml:"metadata,omitempty"`
}

// Diagnostic is a problem found while scanning.
type Diagnostic struct {
	Severity string `yaml:"severity"`
	Code     string `yaml:"code"`
	Message  string `yaml:"message"`
	Pos      string `yaml:"pos,omitempty"`
}

// Build converts a TypeGraph into a Model. Packages are ordered by path and
// types by source order.
func Build(graph *analyze.TypeGraph) *Model {
	m := &Model{Version: Version, Packages: []Package{}}

	paths := make([]string, 0, len(graph.Packages))
	for p := range graph.Packages {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		pkg := graph.Packages[p]
		out := Package{Path: pkg.Path, Name: pkg.Name, Types: []Type{}}
		qual := types.RelativeTo(pkgOf(graph, pkg))

		for _, fi := range pkg.Files {
			for _, id := range fi.Types {
				if info := graph.GetType(id); info != nil {
					out.Types = append(out.Types, buildType(info, qual))
				}
			}
		}

		if len(out.Types) > 0 {
			m.Packages = append(m.Packages, out)
		}
	}

	for _, d := range graph.Diagnostics.All() {
		m.Diagnostics = append(m.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
			Pos:      d.Pos,
		})
	}

	return m
}

// pkgOf finds the go/types package of pkg through any of its types.
func pkgOf(graph *analyze.TypeGraph, pkg *analyze.PackageInfo) *types.Package {
	for _, fi := range pkg.Files {
		for _, id := range fi.Types {
			if info := graph.GetType(id); info != nil && info.GoType != nil {
				return info.GoType.Obj().Pkg()
			}
		}
	}

	return nil
}

func buildType(info *analyze.TypeInfo, qual types.Qualifier) Type {
	t := Type{
		Name:      info.ID.Name,
		ClassName: info.ClassName,
		Mode:      info.Mode.String(),
		Pos:       info.Pos,
	}

	for _, f := range info.Attributes {
		m := Member{Name: f.Name, Type: types.TypeString(f.Type, qual), Metadata: NewMetadata(f.Metadata)}
		if f.ReadOnly {
			m.Qualifiers = append(m.Qualifiers, "readonly")
		}

		t.Attributes = append(t.Attributes, m)
	}

	for _, mi := range info.Methods {
		m := Member{Name: mi.Name, Metadata: NewMetadata(mi.Metadata)}
		if mi.Signature != nil {
			m.Type = signatureString(mi.Signature, qual)
			if fallible(mi.Signature) {
				m.Qualifiers = append(m.Qualifiers, "fallible")
			}
		}

		if mi.PointerReceiver {
			m.Qualifiers = append([]string{"mutating"}, m.Qualifiers...)
		}

		t.Methods = append(t.Methods, m)
	}

	for _, p := range info.Parents {
		t.Parents = append(t.Parents, Relation{
			Type:     types.TypeString(p.Type, qual),
			Embedded: p.Embedded,
			Metadata: NewMetadata(p.Metadata),
		})
	}

	for _, u := range info.UsedTypes {
		t.UsedTypes = append(t.UsedTypes, Relation{
			Type:     types.TypeString(u.Type, qual),
			Metadata: NewMetadata(u.Metadata),
		})
	}

	return t
}

// signatureString renders a method signature without its receiver.
func signatureString(sig *types.Signature, qual types.Qualifier) string {
	plain := types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())
	return types.TypeString(plain, qual)
}

func fallible(sig *types.Signature) bool {
	res := sig.Results()
	if res.Len() == 0 {
		return false
	}

	return types.Identical(res.At(res.Len()-1).Type(), types.Universe.Lookup("error").Type())
}

// Marshal serializes a Model to YAML.
func Marshal(m *Model) ([]byte, error) {
	return yaml.Marshal(m)
}

// Parse parses YAML data into a Model.
func Parse(data []byte) (*Model, error) {
	var m Model

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse export YAML: %w", err)
	}

	if m.Version == "" {
		m.Version = Version
	}

	return &m, nil
}

// WriteFile writes a Model to the given path.
func WriteFile(m *Model, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file %s: %w", path, err)
	}

	return nil
}
