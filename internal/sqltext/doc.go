// Package sqltext scans SQL text into a flat token stream with byte offsets.
//
// The scanner is deliberately shallow. It knows nothing about statements or
// expressions; it only separates words, literals, comments and the handful of
// punctuation characters that structural rewriting cares about:
//
//   - Parentheses, so callers can track nesting depth explicitly
//   - Commas, so callers can split lists at a given depth
//   - Dots, so callers can tell a qualified name from a bare one
//
// String literals, quoted identifiers and comments are single tokens. A
// parenthesis or keyword inside them never affects depth tracking or
// keyword matching.
//
// Every token records the half-open byte range [Pos, End) it was read from,
// so rewriting code can splice replacements into the original text without
// re-rendering anything it did not touch.
package sqltext
