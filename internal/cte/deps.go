package cte

import (
	"regexp"
	"sort"
)

// DependencyMap maps a definition key to the keys of the definitions its
// body references. Every definition has an entry, possibly empty.
type DependencyMap map[string]map[string]bool

// Of returns the dependencies of key, sorted.
func (m DependencyMap) Of(key string) []string {
	deps := make([]string, 0, len(m[key]))
	for dep := range m[key] {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// Lists converts the map to sorted slices, for reporting.
func (m DependencyMap) Lists() map[string][]string {
	out := make(map[string][]string, len(m))
	for key := range m {
		out[key] = m.Of(key)
	}
	return out
}

// Dependencies finds, for each definition, which other definitions its body
// mentions. A mention is any case-insensitive whole-word match of the other
// definition's name anywhere in the body; no attempt is made to tell a
// table reference from a column or literal that happens to share the name.
// A definition never depends on itself.
func Dependencies(defs []Definition) DependencyMap {
	patterns := make([]*regexp.Regexp, len(defs))
	for i, def := range defs {
		patterns[i] = wordPattern(def.Name)
	}

	deps := make(DependencyMap, len(defs))
	for _, def := range defs {
		deps[def.Key] = make(map[string]bool)
	}

	for _, def := range defs {
		for j, other := range defs {
			if other.Key == def.Key {
				continue
			}
			if patterns[j].MatchString(def.Body) {
				deps[def.Key][other.Key] = true
			}
		}
	}

	return deps
}

// wordPattern matches name between non-word characters. RE2's \b only
// knows ASCII, so the boundaries are spelled out to cover letters from any
// script.
func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(name) + `(?:$|[^\p{L}\p{N}_])`)
}
