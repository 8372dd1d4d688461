package sqltext

import (
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	Word    Kind = iota // identifiers and keywords: orders, SELECT, @p1, #tmp
	Quoted              // "name", [name], `name`
	String              // 'text', N'text'
	Number              // 42, 3.14, 1e10, 0x1F
	LParen              // (
	RParen              // )
	Comma               // ,
	Dot                 // .
	Punct               // any other single operator byte
	Comment             // -- line or /* block */
)

var kindNames = [...]string{
	Word:    "Word",
	Quoted:  "Quoted",
	String:  "String",
	Number:  "Number",
	LParen:  "LParen",
	RParen:  "RParen",
	Comma:   "Comma",
	Dot:     "Dot",
	Punct:   "Punct",
	Comment: "Comment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is a lexical unit and the byte range it occupies in the source.
type Token struct {
	Kind Kind
	Text string
	Pos  int // offset of the first byte
	End  int // offset just past the last byte
}

// Is reports whether the token is the given word, ignoring case.
func (t Token) Is(word string) bool {
	return t.Kind == Word && strings.EqualFold(t.Text, word)
}

// Lex scans src into tokens, comments included. Whitespace is dropped.
// Unterminated strings, quoted identifiers and block comments run to the end
// of the input.
func Lex(src string) []Token {
	l := &lexer{src: src}
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return l.tokens
		}
		l.next()
	}
}

// Code scans src and drops comment tokens.
func Code(src string) []Token {
	all := Lex(src)
	tokens := all[:0]
	for _, tok := range all {
		if tok.Kind != Comment {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) emit(kind Kind, start int) {
	l.tokens = append(l.tokens, Token{
		Kind: kind,
		Text: l.src[start:l.pos],
		Pos:  start,
		End:  l.pos,
	})
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) next() {
	start := l.pos
	ch := l.src[l.pos]

	switch {
	case ch == '-' && l.peek(1) == '-':
		l.readLineComment()
		l.emit(Comment, start)
	case ch == '/' && l.peek(1) == '*':
		l.readBlockComment()
		l.emit(Comment, start)
	case ch == '\'':
		l.readDelimited('\'', '\'')
		l.emit(String, start)
	case (ch == 'N' || ch == 'n') && l.peek(1) == '\'':
		l.pos++
		l.readDelimited('\'', '\'')
		l.emit(String, start)
	case ch == '"':
		l.readDelimited('"', '"')
		l.emit(Quoted, start)
	case ch == '[':
		l.readDelimited('[', ']')
		l.emit(Quoted, start)
	case ch == '`':
		l.readDelimited('`', '`')
		l.emit(Quoted, start)
	case ch == '(':
		l.pos++
		l.emit(LParen, start)
	case ch == ')':
		l.pos++
		l.emit(RParen, start)
	case ch == ',':
		l.pos++
		l.emit(Comma, start)
	case ch == '.' && !isDigit(l.peek(1)):
		l.pos++
		l.emit(Dot, start)
	case isDigit(ch) || ch == '.':
		l.readNumber()
		l.emit(Number, start)
	case isWordStart(ch):
		for l.pos < len(l.src) && isWordPart(l.src[l.pos]) {
			l.pos++
		}
		l.emit(Word, start)
	default:
		l.pos++
		l.emit(Punct, start)
	}
}

func (l *lexer) readLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) readBlockComment() {
	l.pos += 2 // /*
	end := strings.Index(l.src[l.pos:], "*/")
	if end < 0 {
		l.pos = len(l.src)
		return
	}
	l.pos += end + 2
}

// readDelimited consumes open, then everything up to the matching close.
// A doubled close character is an escaped literal close.
func (l *lexer) readDelimited(open, close byte) {
	l.pos++ // open
	for l.pos < len(l.src) {
		if l.src[l.pos] == close {
			if l.peek(1) == close {
				l.pos += 2
				continue
			}
			l.pos++
			return
		}
		l.pos++
	}
}

// readNumber is generous: it accepts any run of digits, letters, dots and
// underscores so that 1e10, 0x1F and 1.5 each come out as one token.
func (l *lexer) readNumber() {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if isDigit(ch) || isLetter(ch) || ch == '.' || ch == '_' {
			l.pos++
			continue
		}
		if (ch == '+' || ch == '-') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.pos++
			continue
		}
		return
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Bytes >= 0x80 are treated as letters so multi-byte UTF-8 identifiers stay
// in one word.
func isWordStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '@' || ch == '#' || ch >= 0x80
}

func isWordPart(ch byte) bool {
	return isWordStart(ch) || isDigit(ch) || ch == '$'
}
