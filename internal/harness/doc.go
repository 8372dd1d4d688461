// Package harness runs rewrite cases: YAML files pairing an input query
// with what its rewrite must look like.
//
// # Case Format
//
//	name: dependency-chain
//	description: "A CTE that reads another is inlined innermost first"
//	input: |
//	  WITH base AS (SELECT id FROM orders),
//	  totals AS (SELECT id FROM base)
//	  SELECT * FROM totals
//	options:
//	  fail_on_cycle: false
//	  fail_on_malformed: false
//	  guard_divisions: true
//	expect:
//	  sql: "..."              # exact rewritten SQL
//	  contains: ["..."]       # substrings that must appear
//	  not_contains: ["..."]   # substrings that must not appear
//	  order: [base, totals]   # inlining order
//	  warnings: [CYCLE_DETECTED]
//	  error: CYCLE_DETECTED   # strict-mode error code
//
// Every expect field is optional; an empty expect only checks that the
// rewrite does not fail unexpectedly.
//
// # Golden Files
//
// Each case may have a golden file holding its rewritten SQL, stored next
// to the cases as golden/<case-file-stem>.golden. The CLI test command
// compares against it and rewrites it with --update; Go tests use
// AssertGolden, which is goldie underneath.
package harness
