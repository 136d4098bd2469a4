package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/database"
	"github.com/fernworks/obskit/record"
)

// writeTimeout bounds a single insert so a wedged database cannot
// block the host application indefinitely.
const writeTimeout = 5 * time.Second

// logRecordsSchema is applied idempotently on first write. Columns
// mirror the record model; fields are stored as a JSON blob.
const logRecordsSchema = `
CREATE TABLE IF NOT EXISTS log_records (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL,
	service   TEXT NOT NULL,
	level     TEXT NOT NULL,
	message   TEXT NOT NULL,
	fields    TEXT
);
CREATE INDEX IF NOT EXISTS idx_log_records_timestamp ON log_records(timestamp);
CREATE INDEX IF NOT EXISTS idx_log_records_service_level ON log_records(service, level);
`

const insertLogRecord = `
INSERT INTO log_records (timestamp, service, level, message, fields)
VALUES (?, ?, ?, ?, ?)`

// Database persists records into a SQLite table, one row per record,
// one transaction per write. Delivery is best-effort: a failed write
// drops the record and reports the error, there is no retry queue.
//
// The connection and schema are established lazily on the first Write,
// so a missing or unwritable database path surfaces as a per-write
// ErrWriteFailed rather than a construction failure.
//
// Thread Safety:
//   - The connection is shared by all callers; writes are serialised
//     by an internal mutex so each row is written atomically.
type Database struct {
	mu  sync.Mutex
	cfg config.DatabaseConfig
	db  *database.DB
}

// NewDatabase creates a database sink for the given configuration.
// No connection is made until the first Write.
func NewDatabase(cfg config.DatabaseConfig) *Database {
	return &Database{cfg: cfg}
}

// Write inserts the record as one row in its own transaction.
// Constraint violations and connection failures are returned wrapping
// ErrWriteFailed and the record is dropped.
func (d *Database) Write(rec record.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		if err := d.connect(); err != nil {
			return fmt.Errorf("%w: database: %w", ErrWriteFailed, err)
		}
	}

	fieldsJSON, err := encodeFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("%w: database: %w", ErrWriteFailed, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: database: starting transaction: %w", ErrWriteFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, insertLogRecord,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Service,
		rec.Level.String(),
		rec.Message,
		fieldsJSON,
	); err != nil {
		return fmt.Errorf("%w: database: inserting record: %w", ErrWriteFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: database: committing record: %w", ErrWriteFailed, err)
	}
	return nil
}

// connect opens the database, applies the schema, and verifies the
// store answers queries before the first row goes in. Caller holds the
// mutex.
func (d *Database) connect() error {
	db, err := database.Open(d.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, logRecordsSchema); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("creating log_records schema: %w", err)
	}

	if err := db.HealthCheck(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("verifying log store %s: %w", db.Path(), err)
	}

	d.db = db
	return nil
}

// encodeFields serialises the fields map as JSON, or NULL when empty.
func encodeFields(fields map[string]any) (any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return string(data), nil
}

// Name returns "database".
func (d *Database) Name() string {
	return "database"
}

// Close closes the underlying connection if one was opened.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}
