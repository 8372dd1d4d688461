package cte

import (
	"strings"

	"github.com/roach88/decteify/internal/sqltext"
)

// Block is a query split at its top-level WITH ... SELECT boundary.
type Block struct {
	// With is the WITH clause including the WITH keyword. Empty when the
	// query has no WITH.
	With string

	// Main is the main query starting at its SELECT. Empty when a WITH was
	// found but no SELECT follows it at depth zero.
	Main string

	// Found reports whether a WITH keyword was located.
	Found bool
}

// Split locates the first WITH keyword and the first SELECT after it that
// sits outside every parenthesis.
//
// Runs of spaces and tabs are collapsed before scanning, so both halves of
// the result are in normalized form. Without a WITH the whole (trimmed) text
// is returned as Main.
func Split(text string) Block {
	text = sqltext.NormalizeSpace(text)
	tokens := sqltext.Code(text)

	start := -1
	for i, tok := range tokens {
		if tok.Is("WITH") {
			start = i
			break
		}
	}
	if start < 0 {
		return Block{Main: strings.TrimSpace(text)}
	}

	withPos := tokens[start].Pos
	depth := 0
	for _, tok := range tokens[start:] {
		switch tok.Kind {
		case sqltext.LParen:
			depth++
		case sqltext.RParen:
			depth--
		case sqltext.Word:
			if depth == 0 && tok.Is("SELECT") {
				return Block{
					With:  strings.TrimSpace(text[withPos:tok.Pos]),
					Main:  strings.TrimSpace(text[tok.Pos:]),
					Found: true,
				}
			}
		}
	}

	return Block{
		With:  strings.TrimSpace(text[withPos:]),
		Found: true,
	}
}
