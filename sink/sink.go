package sink

import (
	"errors"

	"github.com/fernworks/obskit/record"
)

// ErrWriteFailed is the dispatch-time sink I/O error. Every Write
// failure wraps it, so callers can test with errors.Is() regardless of
// which variant failed.
var ErrWriteFailed = errors.New("sink: write failed")

// Sink is a record destination.
//
// Implementations must not panic past the Write boundary and must
// serialise their own writes so one Write produces one complete line,
// row, or payload even under concurrent callers.
type Sink interface {
	// Write serialises and emits one record. A failure is returned as
	// an error wrapping ErrWriteFailed; the record is dropped.
	Write(rec record.Record) error

	// Name identifies the sink variant in diagnostics ("console",
	// "file", ...).
	Name() string

	// Close releases the sink's resources (file handle, DB connection,
	// broker connection). Safe to call on a sink that never wrote.
	Close() error
}
