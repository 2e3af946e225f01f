package analyze

import (
	"fmt"
	"sort"
	"strings"

	"typereflect/internal/diagnostic"
)

// topoSort returns node indices so that every node comes after the nodes it
// depends on.
//
// depsFn(i) yields the indices i depends on. The result is deterministic:
// when several nodes are ready, the smallest index goes first. When a cycle
// exists, the nodes that could not be ordered are returned as rest.
func topoSort(n int, depsFn func(i int) []int) (order, rest []int, err error) {
	if n <= 0 {
		return nil, nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order = make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) == n {
		return order, nil, nil
	}

	for i := range n {
		if indeg[i] > 0 {
			rest = append(rest, i)
		}
	}

	return order, rest, fmt.Errorf("cycle detected")
}

// ParentOrder returns the annotated types so that each comes after its
// annotated parents, and separately the types that could not be ordered
// because they take part in, or descend from, a parent cycle.
func (g *TypeGraph) ParentOrder() (ordered, cyclic []*TypeInfo) {
	sorted := g.Sorted()

	index := make(map[TypeID]int, len(sorted))
	for i, t := range sorted {
		index[t.ID] = i
	}

	order, rest, _ := topoSort(len(sorted), func(i int) []int {
		var deps []int

		for _, p := range sorted[i].Parents {
			if j, ok := index[relationID(p)]; ok {
				deps = append(deps, j)
			}
		}

		return deps
	})

	for _, o := range order {
		ordered = append(ordered, sorted[o])
	}

	for _, r := range rest {
		cyclic = append(cyclic, sorted[r])
	}

	return ordered, cyclic
}

// checkCycles reports parent cycles among the annotated types. The
// aggregator would panic on them at run time.
func (g *TypeGraph) checkCycles() {
	_, cyclic := g.ParentOrder()
	if len(cyclic) == 0 {
		return
	}

	names := make([]string, len(cyclic))
	for i, t := range cyclic {
		names[i] = t.ID.String()
	}

	g.Diagnostics.AddError(diagnostic.CodeCyclicParents,
		"parent declarations form a cycle involving "+strings.Join(names, ", "),
		cyclic[0].ID.String(), "").At(cyclic[0].Pos)
}
