package rewrite

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/decteify/internal/sqltext"
)

// Inline replaces every table reference to name in target with body wrapped
// as a derived table.
//
// A reference is the name as a whole word directly after FROM or JOIN (the
// JOIN of INNER, LEFT, RIGHT, FULL [OUTER] and CROSS JOIN included), or
// directly after "FROM (". A name followed by "." is a column qualifier, not
// a reference, and is left alone. The reference and its alias, if any, are
// replaced by
//
//	((
//	<body>
//	)) AS <alias>
//
// where alias is the one written after the reference (AS x, or bare x), or
// the reference itself when there is none. All other text is kept verbatim.
// Inserted bodies are not scanned again.
func Inline(target, name, body string) string {
	tokens := sqltext.Code(target)

	var b strings.Builder
	last := 0
	for i := 0; i < len(tokens); i++ {
		ref, ok := referenceAt(tokens, i, name)
		if !ok {
			continue
		}
		b.WriteString(target[last:ref.pos])
		b.WriteString("((\n")
		b.WriteString(body)
		b.WriteString("\n)) AS ")
		b.WriteString(ref.alias)
		last = ref.end
		i = ref.next - 1
	}
	if last == 0 {
		return target
	}
	b.WriteString(target[last:])
	return b.String()
}

// reference is one matched use of a CTE name.
type reference struct {
	pos   int    // offset of the name
	end   int    // offset just past the name or its alias
	alias string // alias to give the derived table
	next  int    // index of the first token after the reference
}

// referenceAt reports whether tokens[i] is a FROM or JOIN keyword that
// introduces a reference to name.
func referenceAt(tokens []sqltext.Token, i int, name string) (reference, bool) {
	kw := tokens[i]
	if !kw.Is("FROM") && !kw.Is("JOIN") {
		return reference{}, false
	}

	j := i + 1
	if kw.Is("FROM") && j < len(tokens) && tokens[j].Kind == sqltext.LParen {
		j++
	}
	if j >= len(tokens) || !isName(tokens[j], name) {
		return reference{}, false
	}
	if j+1 < len(tokens) && tokens[j+1].Kind == sqltext.Dot {
		return reference{}, false
	}

	ref := reference{
		pos:   tokens[j].Pos,
		end:   tokens[j].End,
		alias: tokens[j].Text,
		next:  j + 1,
	}

	k := j + 1
	switch {
	case k+1 < len(tokens) && tokens[k].Is("AS") && isAlias(tokens[k+1], true):
		ref.alias = tokens[k+1].Text
		ref.end = tokens[k+1].End
		ref.next = k + 2
	case k < len(tokens) && isAlias(tokens[k], false):
		ref.alias = tokens[k].Text
		ref.end = tokens[k].End
		ref.next = k + 1
	}

	return ref, true
}

// isName compares under full case folding, the same folding that keys
// definitions, so "STRASSE" refers to a CTE named "Straße".
func isName(tok sqltext.Token, name string) bool {
	if tok.Kind != sqltext.Word {
		return false
	}
	fold := cases.Fold()
	return fold.String(tok.Text) == fold.String(name)
}

// isAlias reports whether tok can be a table alias. After AS any identifier
// will do; a bare alias must not be a clause keyword such as ON or WHERE.
func isAlias(tok sqltext.Token, afterAS bool) bool {
	switch tok.Kind {
	case sqltext.Quoted:
		return true
	case sqltext.Word:
		return afterAS || !sqltext.IsClauseWord(tok.Text)
	}
	return false
}
