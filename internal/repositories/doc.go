// Package repositories implements SQLite persistence for transfer state.
//
// Key Implementations:
//   - [JobRepository] : Transfer job records with status tracking and soft deletes
//   - [SQLiteDataCache] : Durable per-job idempotency cache backing resumed imports
//
// Sequence numbers provide stable, human-readable ordering (e.g., job #42)
// independent of UUIDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
