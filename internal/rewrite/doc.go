// Package rewrite performs the textual substitutions that remove CTEs from a
// query: replacing table references with derived tables, and guarding
// divisions against a zero divisor.
//
// Both functions work on plain text and return plain text. Inline is token
// aware, so a CTE name that appears inside a string literal, a quoted
// identifier or a comment is never replaced. GuardDivisions is deliberately
// not: it rewrites any "left / right" pair of whitespace-delimited tokens.
package rewrite
