// Package store provides durable storage for butterfly, user and rating
// records.
//
// A Store holds named collections of flat records. Every record is a
// map of string fields; every collection keeps insertion order. Three
// backends implement the same Store interface:
//   - JSONFileStore: a single JSON document, one array per collection
//   - SQLiteStore: one records table keyed by insertion sequence
//   - BoltStore: one bbolt bucket per collection, keyed by bucket sequence
//
// # Write Boundary
//
// Each backend serializes mutations through one exclusive boundary
// (RWMutex, single SQLite connection, bbolt Update transaction). The
// AppendUnique primitive checks and appends inside that boundary, so two
// callers racing to insert the same key cannot both succeed.
//
// # Encoding
//
// SQLite and bbolt persist records as canonical JSON (sorted keys, no HTML
// escaping) so identical records always produce identical bytes. Values are
// stored byte-for-byte on every backend.
package store
