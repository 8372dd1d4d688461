package cte

// Ordering is a dependency-first sequence of definition keys.
type Ordering struct {
	// Keys in inlining order: every dependency precedes its dependents.
	Keys []string

	// Excluded holds keys that never became ready: members of a cycle and
	// anything that depends on one, in declaration order.
	Excluded []string
}

// Order sorts definitions so that dependencies come first, using Kahn's
// algorithm. A definition's in-degree is the number of definitions it
// depends on; emitting a definition releases every definition that listed
// it. Ties are broken by declaration order.
//
// Definitions whose in-degree never reaches zero are left out of Keys and
// reported in Excluded rather than treated as an error.
func Order(defs []Definition, deps DependencyMap) Ordering {
	inDegree := make(map[string]int, len(defs))
	for _, def := range defs {
		inDegree[def.Key] = len(deps[def.Key])
	}

	var queue []string
	for _, def := range defs {
		if inDegree[def.Key] == 0 {
			queue = append(queue, def.Key)
		}
	}

	var ordering Ordering
	emitted := make(map[string]bool, len(defs))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		ordering.Keys = append(ordering.Keys, node)
		emitted[node] = true

		for _, def := range defs {
			if !deps[def.Key][node] {
				continue
			}
			inDegree[def.Key]--
			if inDegree[def.Key] == 0 {
				queue = append(queue, def.Key)
			}
		}
	}

	for _, def := range defs {
		if !emitted[def.Key] {
			ordering.Excluded = append(ordering.Excluded, def.Key)
		}
	}

	return ordering
}
