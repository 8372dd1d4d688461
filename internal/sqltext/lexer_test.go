package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestLex_SimpleSelect(t *testing.T) {
	tokens := Lex("SELECT a, b FROM t")

	assert.Equal(t, []string{"SELECT", "a", ",", "b", "FROM", "t"}, texts(tokens))
	assert.Equal(t, []Kind{Word, Word, Comma, Word, Word, Word}, kinds(tokens))
}

func TestLex_Offsets(t *testing.T) {
	src := "SELECT  x\n FROM (t)"
	tokens := Lex(src)

	for _, tok := range tokens {
		assert.Equal(t, tok.Text, src[tok.Pos:tok.End], "token %q must slice back out of the source", tok.Text)
	}
}

func TestLex_Literals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind Kind
		text string
	}{
		{"string", `'a(b'`, String, `'a(b'`},
		{"escaped_quote", `'it''s'`, String, `'it''s'`},
		{"national_string", `N'x'`, String, `N'x'`},
		{"double_quoted", `"my col"`, Quoted, `"my col"`},
		{"bracketed", `[my]]col]`, Quoted, `[my]]col]`},
		{"backtick", "`x`", Quoted, "`x`"},
		{"integer", `42`, Number, `42`},
		{"decimal", `3.14`, Number, `3.14`},
		{"exponent", `1e-5`, Number, `1e-5`},
		{"hex", `0x1F`, Number, `0x1F`},
		{"leading_dot", `.5`, Number, `.5`},
		{"variable", `@p1`, Word, `@p1`},
		{"temp_table", `#tmp`, Word, `#tmp`},
		{"line_comment", "-- hi (", Comment, "-- hi ("},
		{"block_comment", "/* a ) b */", Comment, "/* a ) b */"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Lex(tt.src)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.kind, tokens[0].Kind)
			assert.Equal(t, tt.text, tokens[0].Text)
		})
	}
}

func TestLex_Unterminated(t *testing.T) {
	tokens := Lex("SELECT 'abc")
	require.Len(t, tokens, 2)
	assert.Equal(t, String, tokens[1].Kind)
	assert.Equal(t, "'abc", tokens[1].Text)

	tokens = Lex("SELECT /* open")
	require.Len(t, tokens, 2)
	assert.Equal(t, Comment, tokens[1].Kind)
}

func TestLex_Punctuation(t *testing.T) {
	tokens := Lex("s.x/y*2")
	assert.Equal(t, []string{"s", ".", "x", "/", "y", "*", "2"}, texts(tokens))
	assert.Equal(t, []Kind{Word, Dot, Word, Punct, Word, Punct, Number}, kinds(tokens))
}

func TestLex_LineCommentStopsAtNewline(t *testing.T) {
	tokens := Lex("-- note\nSELECT 1")
	assert.Equal(t, []Kind{Comment, Word, Number}, kinds(tokens))
	assert.Equal(t, "-- note", tokens[0].Text)
}

func TestCode_DropsComments(t *testing.T) {
	tokens := Code("SELECT /* x */ 1 -- y")
	assert.Equal(t, []string{"SELECT", "1"}, texts(tokens))
}

func TestToken_Is(t *testing.T) {
	tok := Token{Kind: Word, Text: "select"}
	assert.True(t, tok.Is("SELECT"))
	assert.False(t, tok.Is("FROM"))

	quoted := Token{Kind: Quoted, Text: `"select"`}
	assert.False(t, quoted.Is("select"), "quoted identifiers are never keywords")
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "SELECT a\n FROM t", NormalizeSpace("SELECT \t a\n   FROM t"))
	assert.Equal(t, "a b", NormalizeSpace("a\t\tb"))
}

func TestIsIdent(t *testing.T) {
	assert.True(t, IsIdent("orders_2024"))
	assert.True(t, IsIdent("café"))
	assert.True(t, IsIdent("é"))
	assert.True(t, IsIdent("продажи_1"))
	assert.False(t, IsIdent("@total"))
	assert.False(t, IsIdent("dbo.orders"))
	assert.False(t, IsIdent(`"x"`))
	assert.False(t, IsIdent(""))
}

func TestIsClauseWord(t *testing.T) {
	for _, w := range []string{"on", "WHERE", "Join", "group", "UNION"} {
		assert.True(t, IsClauseWord(w), w)
	}
	for _, w := range []string{"s", "orders", "x"} {
		assert.False(t, IsClauseWord(w), w)
	}
}
