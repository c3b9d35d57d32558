// Package journal provides durable storage for engine sessions and their
// tick snapshots, using SQLite with WAL mode for concurrent read access.
//
// A session groups the ticks of one engine run under a time-sortable UUIDv7
// id. Each tick row stores a complete snapshot, keyed by a ULID and unique
// per (session, tick) so replayed appends are idempotent. Sessions can be
// exported as JSON Lines for offline analysis.
package journal
