package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strings"
)

// Prefix starts every directive comment. Like other Go directives it has no
// space after the slashes, so go/ast leaves it out of CommentGroup.Text.
const Prefix = "//reflect:"

// Directive names.
const (
	Generate  = "generate"
	ClassName = "class_name"
	Parents   = "parents"
	UsedTypes = "used_types"
	On        = "on"
	Off       = "off"
	ReadOnly  = "readonly"
	Metadata  = "metadata"
)

// TypeLevel and MemberLevel list the directives accepted on type and on
// member declarations.
var (
	TypeLevel   = []string{Generate, ClassName, Parents, UsedTypes}
	MemberLevel = []string{On, Off, ReadOnly, Metadata}
)

// Directive is one "//reflect:name args" comment line.
type Directive struct {
	Name string
	Args string
	Pos  token.Pos
}

// Set is the directives of one declaration in source order.
type Set []Directive

// Parse extracts the directives of the given comment groups. Nil groups are
// ignored, so a declaration's doc and trailing comment can be passed
// together.
func Parse(groups ...*ast.CommentGroup) Set {
	var set Set

	for _, g := range groups {
		if g == nil {
			continue
		}

		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, Prefix)
			if !ok {
				continue
			}

			name, args, _ := strings.Cut(rest, " ")
			set = append(set, Directive{
				Name: strings.TrimSpace(name),
				Args: strings.TrimSpace(args),
				Pos:  c.Slash,
			})
		}
	}

	return set
}

// Lookup returns the last directive called name. Later directives override
// earlier ones.
func (s Set) Lookup(name string) (Directive, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Name == name {
			return s[i], true
		}
	}

	return Directive{}, false
}

// Has reports whether a directive called name is present.
func (s Set) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// All returns every directive called name, in order.
func (s Set) All(name string) []Directive {
	var out []Directive

	for _, d := range s {
		if d.Name == name {
			out = append(out, d)
		}
	}

	return out
}

// Unknown returns the directives whose name is not in known.
func (s Set) Unknown(known []string) []Directive {
	var out []Directive

	for _, d := range s {
		if !slices.Contains(known, d.Name) {
			out = append(out, d)
		}
	}

	return out
}

// SplitList splits a comma separated list of type expressions, ignoring
// commas nested in brackets or parentheses ("Pair[int, string]",
// "func(a, b int)").
func SplitList(args string) ([]string, error) {
	var (
		items []string
		depth int
		start int
	)

	for i, r := range args {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q at offset %d", r, i)
			}
		case ',':
			if depth == 0 {
				items = appendItem(items, args[start:i])
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", args)
	}

	return appendItem(items, args[start:]), nil
}

func appendItem(items []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return items
	}

	return append(items, item)
}
