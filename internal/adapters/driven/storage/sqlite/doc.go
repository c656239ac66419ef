// Package sqlite provides the SQLite implementation of knock's store ports.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the binary
// cross-compiles without CGO. One database connection backs:
//
//   - RecordStore: Canonical records with batched create and patch writes
//   - CategoryStore: Level-two categories, unique per name and parent
//   - AuthoritativeStore: The film catalog reference index
//   - SchedulerStore: Scheduler task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory and applied in order on open.
//
// # Data Location
//
// By default the database is stored at ~/.knock/data/knock.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout so a CLI reader can query while a run writes.
package sqlite
