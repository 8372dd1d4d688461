package rewrite

import "regexp"

var divisionPattern = regexp.MustCompile(`(\S+)\s*/\s*(\S+)`)

// GuardDivisions rewrites every "left / right" into
// "left / NULLIF(right, 0)" so a zero divisor yields NULL instead of an
// error. Operands are whatever non-space runs surround the slash; matches
// are taken left to right without overlapping.
func GuardDivisions(text string) string {
	return divisionPattern.ReplaceAllString(text, "${1} / NULLIF(${2}, 0)")
}
