// Package store records rewrite runs in a SQLite database.
//
// Every rewrite the CLI or watcher performs can be appended as a Run: the
// input and output paths, content hashes of both texts, how many CTEs were
// found and inlined, and the warning codes raised. The history answers
// "when was this file last rewritten, and did its output change?".
//
// # Ordering
//
//   - Runs are ordered by seq, an autoincrement column, never by timestamp
//   - ListRuns returns newest first: ORDER BY seq DESC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - Single connection: SQLite allows one writer
//
// # Schema Versioning
//
// The schema is embedded from schema.sql and applied on every Open.
// Incremental changes are tracked with PRAGMA user_version.
package store
