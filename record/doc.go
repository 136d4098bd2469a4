// Package record defines the structured log record that flows through
// the obskit pipeline.
//
// A Record is one self-contained unit of observability data: either an
// ordinary log entry or a metric sample encoded as a log entry. Records
// are created synchronously inside a logging call, redacted, fanned out
// to the configured sinks, and discarded — they are never buffered or
// retained by the toolkit.
//
// # Construction
//
//	rec, err := record.New("billing-api", record.LevelInfo, "user login",
//	    map[string]any{"user_id": "42"})
//
// Construction validates the level and the field value types. These
// errors indicate a programming error at the call site and are returned
// to the caller, unlike sink I/O failures which are captured downstream.
//
// # Field values
//
// Field values must be scalars (strings, booleans, integer or float
// kinds, nil) or nested maps/slices of the same. Anything else fails
// with ErrUnsupportedFieldType.
package record
