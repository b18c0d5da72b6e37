// Package database provides the SQLite persistence layer for plantcore.
//
// It wraps database/sql with connection setup (WAL mode, busy timeout,
// foreign keys), health checks, and an embedded-migration runner. Device
// profiles and plant alerts are stored here; time-series telemetry goes
// to InfluxDB instead.
//
// # Migrations
//
// Migration files live in the migrations/ directory at the repository root
// and are embedded into the binary via embed.FS. Filenames follow
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql. Each migration is applied
// in its own transaction; a failed migration rolls back alone and earlier
// migrations stay committed.
//
// # Concurrency
//
// SQLite supports a single writer. The connection pool is capped at one
// open connection; WAL mode allows concurrent readers.
package database
