// Package resolve orders collections so that every same_as target is
// generated before its referrer, per spec.md §4.3. Cycle detection and the
// topological sort are delegated to a real graph library rather than
// hand-rolled, per DESIGN.md.
package resolve

import (
	"sort"
	"strings"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/namespace"
)

// Order returns collection names such that every collection appears after
// every other collection it references via same_as.
func Order(ns *namespace.Namespace) ([]string, error) {
	g := core.NewGraph(core.WithDirected(true))
	for _, name := range ns.Names {
		if err := g.AddVertex(name); err != nil {
			return nil, errkit.Configuration(name, "building dependency graph: %v", err)
		}
	}

	deps := make(map[string]map[string]bool, len(ns.Names))
	for _, name := range ns.Names {
		refs := map[string]bool{}
		namespace.ReferencedCollections(ns.Roots[name], name, refs)
		deps[name] = refs
		for dep := range refs {
			// dep must be produced before name: edge dep -> name.
			if _, err := g.AddEdge(dep, name, 0); err != nil {
				return nil, errkit.Configuration(name, "recording dependency on %q: %v", dep, err)
			}
		}
	}

	order, err := dfs.TopologicalSort(g)
	if err != nil {
		if err == dfs.ErrCycleDetected {
			return nil, errkit.Configuration("", "cycle: %s", describeCycle(deps))
		}
		return nil, errkit.Configuration("", "ordering collections: %v", err)
	}
	return order, nil
}

// describeCycle renders a best-effort human-readable cycle trace for the
// configuration error; it walks the dependency map, in lexicographic order,
// looking for the first collection that is (transitively) its own dependency.
func describeCycle(deps map[string]map[string]bool) string {
	for _, start := range sortedNames(deps) {
		if path := findCycle(deps, start, start, map[string]bool{}, []string{start}); path != "" {
			return path
		}
	}
	return "unknown"
}

func sortedNames(set map[string]map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func findCycle(deps map[string]map[string]bool, start, current string, visited map[string]bool, trail []string) string {
	next := make([]string, 0, len(deps[current]))
	for dep := range deps[current] {
		next = append(next, dep)
	}
	sort.Strings(next)
	for _, dep := range next {
		if dep == start && len(trail) > 1 {
			return strings.Join(append(trail, start), " -> ")
		}
		if visited[dep] {
			continue
		}
		visited[dep] = true
		if path := findCycle(deps, start, dep, visited, append(trail, dep)); path != "" {
			return path
		}
	}
	return ""
}
