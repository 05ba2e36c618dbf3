// Package sqlite provides a SQLite-backed implementation of the engine's
// state stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database connection serves:
//
//   - FileRecordStore: what was last processed for each descriptor file
//   - ScheduleStore: periodic scan state and tick history
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.gateway-sync/data/state.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout.
package sqlite
