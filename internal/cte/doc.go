// Package cte finds the common table expressions of a query and works out
// the order in which they can be inlined.
//
// The analysis runs in four steps, each a pure function over text or over
// the previous step's output:
//
//	Split        raw text      -> WITH block + main select
//	Extract      raw text      -> ordered definitions {name, body}
//	Dependencies definitions   -> name -> set(names referenced in body)
//	Order        dependencies  -> names, dependencies first
//
// Splitting and extraction track parenthesis depth over the sqltext token
// stream, so a comma or SELECT inside a CTE body never splits the query.
//
// Dependency detection is intentionally textual: any whole-word occurrence
// of another CTE's name in a body is an edge, whether it is a table
// reference, a column name or part of a string literal.
//
// Cycles are not errors here. Order leaves cyclic CTEs (and anything that
// depends on them) out of the sequence and lists them as excluded;
// AnalyzeCycles explains why by reporting each cycle path.
package cte
