// Package jobgraph layers dependency ordering on top of the otherwise
// dependency-agnostic iterators in package jobsource: a topological sort
// (Kahn's algorithm) over a plain set of named jobs with DependsOn links.
package jobgraph

import (
	"fmt"
	"sort"
)

// Node is one job in a dependency graph: an identifier and the ids it
// depends on. The spec to run is paired with a Node by Job (see source.go).
type Node struct {
	ID        string
	DependsOn []string

	dependents []*Node // populated by build(): nodes that depend on this one
	inDegree   int
}

// CycleError reports that TopoOrder could not fully order its input because
// of a dependency cycle.
type CycleError struct {
	TotalPackages   int
	OrderedPackages int
	Remaining       []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("jobgraph: cycle detected: ordered %d/%d nodes, %d stuck in a cycle",
		e.OrderedPackages, e.TotalPackages, len(e.Remaining))
}

// TopoOrder computes a dependency-respecting order over nodes using Kahn's
// algorithm: nodes with no unresolved dependencies are released first, and
// releasing a node reduces the in-degree of everything depending on it.
// Ties are broken by ID for determinism, since nothing in this package
// otherwise privileges one ready node over another — order among
// simultaneously-ready jobs is left to package strategy.
//
// If the graph contains a cycle, TopoOrder returns the partial order
// achieved so far alongside a *CycleError describing what could not be
// placed.
func TopoOrder(nodes []*Node) ([]*Node, error) {
	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		n.dependents = nil
		byID[n.ID] = n
	}
	for _, n := range nodes {
		n.inDegree = len(n.DependsOn)
		for _, depID := range n.DependsOn {
			dep, ok := byID[depID]
			if !ok {
				return nil, fmt.Errorf("jobgraph: node %q depends on unknown node %q", n.ID, depID)
			}
			dep.dependents = append(dep.dependents, n)
		}
	}

	var ready []*Node
	for _, n := range nodes {
		if n.inDegree == 0 {
			ready = append(ready, n)
		}
	}
	sortByID(ready)

	result := make([]*Node, 0, len(nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		result = append(result, n)

		var newlyReady []*Node
		for _, dep := range n.dependents {
			dep.inDegree--
			if dep.inDegree == 0 {
				newlyReady = append(newlyReady, dep)
			}
		}
		sortByID(newlyReady)
		ready = append(ready, newlyReady...)
	}

	if len(result) != len(nodes) {
		placed := make(map[string]bool, len(result))
		for _, n := range result {
			placed[n.ID] = true
		}
		var remaining []string
		for _, n := range nodes {
			if !placed[n.ID] {
				remaining = append(remaining, n.ID)
			}
		}
		sort.Strings(remaining)
		return result, &CycleError{
			TotalPackages:   len(nodes),
			OrderedPackages: len(result),
			Remaining:       remaining,
		}
	}

	return result, nil
}

func sortByID(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}
