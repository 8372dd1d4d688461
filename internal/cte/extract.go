package cte

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/decteify/internal/sqltext"
)

// Definition is one named sub-query from a WITH clause.
type Definition struct {
	// Key is the case-folded name used for lookups.
	Key string

	// Name is the name as written in the WITH clause.
	Name string

	// Body is the text between the definition's outer parentheses, trimmed.
	Body string
}

// Extraction is the result of pulling CTE definitions out of a query.
type Extraction struct {
	// Definitions in declaration order. A redefined name keeps its first
	// position and takes the last body.
	Definitions []Definition

	// Main is the main query. When no definitions could be used it is the
	// original input, trimmed.
	Main string

	// Skipped holds WITH-clause chunks that are not of the form
	// name AS ( ... ).
	Skipped []string

	// Duplicates lists names defined more than once.
	Duplicates []string

	// MissingSelect is set when a WITH was found but no top-level SELECT
	// follows it.
	MissingSelect bool
}

// Lookup returns the definition with the given name, ignoring case.
func (e *Extraction) Lookup(name string) (Definition, bool) {
	key := foldName(name)
	for _, def := range e.Definitions {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

// Names returns the definition names as written, in declaration order.
func (e *Extraction) Names() []string {
	names := make([]string, len(e.Definitions))
	for i, def := range e.Definitions {
		names[i] = def.Name
	}
	return names
}

// Extract splits text into its CTE definitions and main query.
//
// Chunks of the WITH clause that do not parse are recorded in Skipped and
// otherwise ignored. A WITH without a following top-level SELECT yields no
// definitions at all, so callers fall back to treating the query as plain
// text.
func Extract(text string) Extraction {
	block := Split(text)
	if block.With == "" {
		return Extraction{Main: strings.TrimSpace(text)}
	}
	if block.Main == "" {
		return Extraction{Main: strings.TrimSpace(text), MissingSelect: true}
	}

	ext := Extraction{Main: block.Main}
	index := make(map[string]int)

	for _, chunk := range splitChunks(stripWith(block.With)) {
		def, ok := parseDefinition(chunk)
		if !ok {
			ext.Skipped = append(ext.Skipped, chunk)
			continue
		}
		if i, seen := index[def.Key]; seen {
			ext.Definitions[i].Name = def.Name
			ext.Definitions[i].Body = def.Body
			ext.Duplicates = append(ext.Duplicates, def.Name)
			continue
		}
		index[def.Key] = len(ext.Definitions)
		ext.Definitions = append(ext.Definitions, def)
	}

	return ext
}

// stripWith removes the leading WITH keyword from a with-block.
func stripWith(with string) string {
	tokens := sqltext.Code(with)
	if len(tokens) == 0 || !tokens[0].Is("WITH") {
		return with
	}
	return with[tokens[0].End:]
}

// splitChunks splits s on commas at parenthesis depth zero. Empty chunks
// (from doubled or trailing commas) are dropped.
func splitChunks(s string) []string {
	var chunks []string
	depth := 0
	start := 0

	add := func(chunk string) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, tok := range sqltext.Code(s) {
		switch tok.Kind {
		case sqltext.LParen:
			depth++
		case sqltext.RParen:
			depth--
		case sqltext.Comma:
			if depth == 0 {
				add(s[start:tok.Pos])
				start = tok.End
			}
		}
	}
	add(s[start:])

	return chunks
}

// parseDefinition matches "name AS ( body )" where the parenthesis opened
// after AS is closed by the chunk's final token.
func parseDefinition(chunk string) (Definition, bool) {
	tokens := sqltext.Code(chunk)
	if len(tokens) < 4 {
		return Definition{}, false
	}

	name, as, open := tokens[0], tokens[1], tokens[2]
	last := tokens[len(tokens)-1]

	if name.Kind != sqltext.Word || !sqltext.IsIdent(name.Text) {
		return Definition{}, false
	}
	if !as.Is("AS") || open.Kind != sqltext.LParen || last.Kind != sqltext.RParen {
		return Definition{}, false
	}

	// The opening parenthesis must stay open until the last token.
	depth := 0
	for _, tok := range tokens[2 : len(tokens)-1] {
		switch tok.Kind {
		case sqltext.LParen:
			depth++
		case sqltext.RParen:
			depth--
		}
		if depth == 0 {
			return Definition{}, false
		}
	}

	return Definition{
		Key:  foldName(name.Text),
		Name: name.Text,
		Body: strings.TrimSpace(chunk[open.End:last.Pos]),
	}, true
}

// foldName returns the case-insensitive lookup key for a CTE name.
func foldName(name string) string {
	return cases.Fold().String(name)
}
