// Package store is the SQLite catalog of synthesized types.
//
// A *Store is a synth.Observer: hand it to builders with synth.WithObserver
// and every shape the cache creates is recorded once. The catalog holds:
//   - synthesized_types: one row per structural key hash
//   - members: the dispatch table of each type, in signature order
//
// # Identity and ordering
//
//   - Rows are keyed by the key hash from internal/ir (RFC 8785 canonical
//     JSON, SHA-256 with domain separation), so re-recording is a no-op
//   - seq is a logical clock assigned at insert; queries order by
//     seq ASC, key_hash COLLATE BINARY ASC
//   - run_id is a UUIDv7 naming the process that first recorded the row
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
