package gen

import (
	"go/types"
	"sort"
	"strconv"
	"strings"

	"typereflect/internal/common"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string // empty when the package's own name is used
	Path  string
}

// String renders the spec as it appears in an import block.
func (s importSpec) String() string {
	if s.Alias == "" {
		return strconv.Quote(s.Path)
	}

	return s.Alias + " " + strconv.Quote(s.Path)
}

// importSet collects the imports of one generated file and picks a unique
// name for every imported package.
type importSet struct {
	pkgPath string // package the file belongs to
	byPath  map[string]string
	byName  map[string]string
	names   map[string]string // path -> package name
}

func newImportSet(pkgPath string) *importSet {
	return &importSet{
		pkgPath: pkgPath,
		byPath:  make(map[string]string),
		byName:  make(map[string]string),
		names:   make(map[string]string),
	}
}

// use imports path under exactly name, as metadata expressions spell it.
// It reports false when name is already taken by another package.
func (s *importSet) use(name, path string) bool {
	if p, ok := s.byName[name]; ok {
		return p == path
	}

	if _, ok := s.byPath[path]; ok {
		return false
	}

	s.byPath[path] = name
	s.byName[name] = path
	s.names[path] = name

	return true
}

// add imports path and returns the name to refer to it by. pkgName is the
// package's declared name; it gets a numeric suffix when already taken.
func (s *importSet) add(path, pkgName string) string {
	if name, ok := s.byPath[path]; ok {
		return name
	}

	if pkgName == "" {
		pkgName = common.PkgAlias(path)
	}

	name := pkgName
	for i := 2; ; i++ {
		if _, taken := s.byName[name]; !taken {
			break
		}

		name = pkgName + strconv.Itoa(i)
	}

	s.byPath[path] = name
	s.byName[name] = path
	s.names[path] = pkgName

	return name
}

// qualifier is a types.Qualifier that records every package it is asked
// about.
func (s *importSet) qualifier(p *types.Package) string {
	if p == nil || p.Path() == s.pkgPath {
		return ""
	}

	return s.add(p.Path(), p.Name())
}

// typeString renders t as it is spelled in the generated file.
func (s *importSet) typeString(t types.Type) string {
	return types.TypeString(t, s.qualifier)
}

// specs returns the standard library imports and the rest, each sorted by
// path.
func (s *importSet) specs() (std, other []importSpec) {
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		spec := importSpec{Path: p}
		if name := s.byPath[p]; name != s.names[p] || name != common.PkgAlias(p) {
			spec.Alias = name
		}

		if s.isStd(p) {
			std = append(std, spec)
		} else {
			other = append(other, spec)
		}
	}

	return std, other
}

// isStd guesses whether path belongs to the standard library: its first
// element has no dot and differs from the first element of the file's own
// package, which covers dotless module paths.
func (s *importSet) isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	own, _, _ := strings.Cut(s.pkgPath, "/")

	return !strings.Contains(first, ".") && first != own
}
