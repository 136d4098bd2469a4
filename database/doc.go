// Package database provides the SQLite connection plumbing used by the
// database sink.
//
// It wraps database/sql with the settings an embedded log store needs:
// WAL mode for concurrent readers, a busy timeout to ride out lock
// contention, a single-writer connection pool, and restrictive file
// permissions. Schema ownership stays with the sink; this package only
// manages the connection lifecycle.
//
// # Usage
//
//	db, err := database.Open(config.DatabaseConfig{
//	    Path:        "./data/obskit.db",
//	    WALMode:     true,
//	    BusyTimeout: 5,
//	})
package database
