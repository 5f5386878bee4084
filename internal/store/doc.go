// Package store provides a SQLite-backed trace log of menu dispatches.
//
// Every interaction the dispatcher answers is appended as one row of the
// dispatches table. Menu state itself is never stored: it travels in the
// component identifiers. The log only records digests of the state an
// interaction carried in and left behind, which is enough to follow a
// session without holding its contents.
//
// # Ordering
//
// Rows are ordered by seq (the dispatcher's logical clock), then by row id.
// Wall time is never recorded, so traces from replayed scenarios compare
// byte for byte.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
