package cte

import (
	"fmt"
	"strings"
)

// CycleWarning describes a group of CTEs that reference each other and so
// cannot be inlined.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path by name: ["a", "b", "a"]
	Members []string `json:"members"` // Every name in the cycle, declaration order
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles reports every cycle in the dependency graph.
//
// The algorithm:
//  1. Treat each definition as a node with edges to its dependencies
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one member as a cycle
//
// Self-references never appear in a DependencyMap, so single-node
// components are always acyclic. Nodes are visited in declaration order and
// edges in sorted order, so the output is deterministic.
//
// A DAG returns an empty slice.
func AnalyzeCycles(defs []Definition, deps DependencyMap) []CycleWarning {
	graph := make(dependencyGraph, len(defs))
	order := make([]string, len(defs))
	position := make(map[string]int, len(defs))
	names := make(map[string]string, len(defs))
	for i, def := range defs {
		graph[def.Key] = deps.Of(def.Key)
		order[i] = def.Key
		position[def.Key] = i
		names[def.Key] = def.Name
	}

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) < 2 {
			continue
		}
		warnings = append(warnings, cycleSCCToWarning(scc, graph, position, names))
	}
	return warnings
}

// dependencyGraph maps a definition key to the keys it depends on.
type dependencyGraph map[string][]string

// tarjanSCC finds strongly connected components using Tarjan's algorithm,
// starting from nodes in the given order.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of a component: pop it off the stack.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts a component into a warning whose path starts at
// the member declared first.
func cycleSCCToWarning(scc []string, graph dependencyGraph, position map[string]int, names map[string]string) CycleWarning {
	members := make([]string, len(scc))
	copy(members, scc)
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && position[members[j]] < position[members[j-1]]; j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}

	path := reconstructCyclePath(members, graph)
	for i, key := range path {
		path[i] = names[key]
	}
	for i, key := range members {
		members[i] = names[key]
	}
	return CycleWarning{
		Path:    path,
		Members: members,
		Message: fmt.Sprintf("circular CTE references: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath walks edges inside the component from its first
// member until it returns to the start.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if neighbor == start {
				next = start
				break
			}
			if sccSet[neighbor] && !visited[neighbor] && next == "" {
				next = neighbor
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
