// Package sink provides the record destinations for the obskit
// pipeline.
//
// A Sink consumes redacted records and performs the actual I/O. The
// closed set of variants:
//
//   - Console: one structured line per record to stdout/stderr
//   - File: appended structured lines, parent directories created
//   - Database: one SQLite row per record, lazy schema creation
//   - MQTT: one JSON payload per record published to a broker topic
//   - Influx: metric records forwarded as InfluxDB points
//   - Memory: in-process capture for tests
//
// # Failure contract
//
// Write never panics past the sink boundary. Failures are returned as
// errors wrapping ErrWriteFailed so the Logger can collect them without
// aborting fan-out: a malfunctioning sink degrades observability, it
// must never crash or block the host application.
//
// # Concurrency
//
// Every sink serialises its own writes with an internal mutex, so
// concurrent callers never interleave partial lines, rows, or payloads
// within one sink instance. Ordering across sinks or across concurrent
// callers is unspecified.
package sink
