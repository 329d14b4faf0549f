// Package storage persists canonical hackathon records.
//
// Two Store implementations exist: SQLiteStore, the default, keeps the
// catalog in a local SQLite file whose schema is managed by embedded
// golang-migrate migrations; PostgresStore keeps it in PostgreSQL through
// gorm. Both apply a reconciliation atomically: stale rows are deactivated
// and the current batch is upserted in a single transaction.
//
// The package also writes the JSON batch export consumed downstream.
package storage
