package sqltext

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	identPattern    = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)
)

// NormalizeSpace collapses runs of spaces and tabs into a single space.
// Newlines are kept so line structure survives.
func NormalizeSpace(s string) string {
	return horizontalSpace.ReplaceAllString(s, " ")
}

// IsIdent reports whether s is a plain identifier made of letters, digits
// and underscores. Letters and digits may be from any script.
func IsIdent(s string) bool {
	return identPattern.MatchString(s)
}

// clauseWords are words that can directly follow a table reference and
// therefore must never be read as a bare table alias.
var clauseWords = map[string]bool{
	"AND":       true,
	"APPLY":     true,
	"AS":        true,
	"CROSS":     true,
	"END":       true,
	"EXCEPT":    true,
	"FETCH":     true,
	"FOR":       true,
	"FROM":      true,
	"FULL":      true,
	"GO":        true,
	"GROUP":     true,
	"HAVING":    true,
	"INNER":     true,
	"INTERSECT": true,
	"INTO":      true,
	"JOIN":      true,
	"LEFT":      true,
	"LIMIT":     true,
	"NATURAL":   true,
	"OFFSET":    true,
	"ON":        true,
	"OPTION":    true,
	"OR":        true,
	"ORDER":     true,
	"OUTER":     true,
	"PIVOT":     true,
	"QUALIFY":   true,
	"RETURNING": true,
	"RIGHT":     true,
	"SELECT":    true,
	"SET":       true,
	"UNION":     true,
	"UNPIVOT":   true,
	"USING":     true,
	"VALUES":    true,
	"WHERE":     true,
	"WINDOW":    true,
	"WITH":      true,
}

// IsClauseWord reports whether word is a keyword that can follow a table
// reference (ON, WHERE, JOIN, GROUP, ...).
func IsClauseWord(word string) bool {
	return clauseWords[strings.ToUpper(word)]
}
