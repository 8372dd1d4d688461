// Package decte rewrites a query that uses a top-level WITH clause into an
// equivalent query without one.
//
// Rewrite runs the whole pipeline:
//
//  1. Extract the CTE definitions and the main select (package cte)
//  2. Work out which definitions reference which, and order them so every
//     dependency comes before its dependents
//  3. Inline each definition, in order, into the main select and into every
//     definition that comes after it (package rewrite)
//  4. Guard every division in the final text with NULLIF
//
// The pipeline is pure: no I/O, no shared state, safe to call from any
// number of goroutines.
//
// Problems never stop the rewrite. Malformed WITH chunks are skipped, a
// WITH without a main select is passed through, and CTEs caught in a
// reference cycle are left in place. Each of these is reported as a
// Warning on the Result. Options can turn the first two (FailOnMalformed)
// or the last (FailOnCycle) into a *RewriteError; the partial Result is
// still returned alongside it.
package decte
