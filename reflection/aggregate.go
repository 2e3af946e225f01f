package reflection

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ancestor is an entry of a type's flattened parent list together with the
// projection from the aggregated type to that parent.
type ancestor struct {
	parent  ParentDescriptor
	project projection
}

// ancestors returns the parents of t followed, for each of them in order, by
// their own ancestors: depth-first, pre-order, without de-duplication.
// chain holds the types being expanded and detects cyclic declarations.
func (r *Registry) ancestors(t reflect.Type, chain []reflect.Type) []ancestor {
	info, _ := r.info(t)
	if len(info.Parents) == 0 {
		return nil
	}

	own := make([]ancestor, 0, len(info.Parents))
	for _, p := range info.Parents {
		own = append(own, ancestor{parent: p, project: p.projectionFrom(t)})
	}

	all := slices.Clone(own)

	for _, a := range own {
		if slices.Contains(chain, a.parent.Type) {
			panic(fmt.Sprintf("reflection: cyclic parents: %s -> %s", formatChain(chain), a.parent.Type))
		}

		for _, g := range r.ancestors(a.parent.Type, append(slices.Clone(chain), a.parent.Type)) {
			all = append(all, ancestor{parent: g.parent, project: a.project.then(g.project)})
		}
	}

	return all
}

// build aggregates the descriptor of t: its own facets followed by each
// ancestor's own facets in flattened parent order.
func (r *Registry) build(t reflect.Type) *TypeDescriptor {
	info, ok := r.info(t)

	td := &TypeDescriptor{
		typ:         t,
		className:   info.ClassName,
		reflectible: ok,
		attributes:  slices.Clone(info.Attributes),
		methods:     slices.Clone(info.Methods),
		usedTypes:   slices.Clone(info.UsedTypes),
	}

	for _, a := range r.ancestors(t, []reflect.Type{t}) {
		td.parents = append(td.parents, ParentDescriptor{Type: a.parent.Type, Metadata: a.parent.Metadata})

		pinfo, ok := r.info(a.parent.Type)
		if !ok {
			continue
		}

		for _, attr := range pinfo.Attributes {
			td.attributes = append(td.attributes, attr.rebased(a.project))
		}

		for _, m := range pinfo.Methods {
			td.methods = append(td.methods, m.rebased(a.project))
		}

		td.usedTypes = append(td.usedTypes, pinfo.UsedTypes...)
	}

	r.logger.Debug("type descriptor built",
		zap.Stringer("type", t),
		zap.Bool("reflectible", ok),
		zap.Int("attributes", len(td.attributes)),
		zap.Int("methods", len(td.methods)),
		zap.Int("parents", len(td.parents)),
		zap.Int("used_types", len(td.usedTypes)),
	)

	return td
}

func formatChain(chain []reflect.Type) string {
	names := make([]string, len(chain))
	for i, t := range chain {
		names[i] = t.String()
	}

	return strings.Join(names, " -> ")
}
