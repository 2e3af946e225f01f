package directive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"sort"
)

// ErrOddMetadata is returned for a metadata list with a dangling key.
var ErrOddMetadata = errors.New("metadata needs key/value pairs")

// ParseMetadata parses the arguments of a metadata directive, a flat list
// alternating keys and values written as Go expressions:
//
//	//reflect:metadata "unit", "px", "min", 0
//
// It returns the source of each expression in order.
func ParseMetadata(args string) ([]string, error) {
	src := "[]any{" + args + "}"

	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parsing metadata %q: %w", args, err)
	}

	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("parsing metadata %q: not a value list", args)
	}

	if len(lit.Elts) == 0 {
		return nil, fmt.Errorf("parsing metadata: empty list")
	}

	if len(lit.Elts)%2 != 0 {
		return nil, fmt.Errorf("%w, got %d values", ErrOddMetadata, len(lit.Elts))
	}

	out := make([]string, 0, len(lit.Elts))
	for _, e := range lit.Elts {
		if _, ok := e.(*ast.KeyValueExpr); ok {
			return nil, fmt.Errorf("parsing metadata %q: write keys and values as separate items", args)
		}

		// ParseExpr positions are 1-based offsets into src.
		out = append(out, src[e.Pos()-1:e.End()-1])
	}

	return out, nil
}

// QualifiedIdents returns the identifiers used as selector bases in exprs,
// such as "time" in time.Second, sorted and without duplicates. They are
// candidate package names the generated code may have to import.
func QualifiedIdents(exprs []string) []string {
	seen := make(map[string]bool)

	for _, src := range exprs {
		expr, err := parser.ParseExpr(src)
		if err != nil {
			continue
		}

		ast.Inspect(expr, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if id, ok := sel.X.(*ast.Ident); ok {
				seen[id.Name] = true
			}

			return true
		})
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}
