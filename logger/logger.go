package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/metric"
	"github.com/fernworks/obskit/record"
	"github.com/fernworks/obskit/redact"
	"github.com/fernworks/obskit/sink"
)

// Logger routes structured records to a fixed set of sinks.
//
// Configuration (service name, sink list, threshold, redaction rules)
// is fixed at construction; there is no reconfiguration API. All
// methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	service   string
	threshold record.Level
	sinks     []sink.Sink
	redactor  *redact.Redactor
	defaults  map[string]any
	fallback  *slog.Logger
}

// New builds a Logger and its sinks from the configuration.
//
// One sink is constructed per destination selector. Sinks with
// lazy targets (file, database, mqtt, influxdb) do not touch their
// target here; a broken target surfaces per write.
//
// Parameters:
//   - cfg: Validated configuration (New re-validates defensively)
//
// Returns:
//   - *Logger: Ready façade; call Close on shutdown
//   - error: If the configuration or redaction rules are invalid
func New(cfg *config.Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	threshold, err := record.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	redactor, err := redact.New(cfg.Redaction)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(cfg.Format)
	sinks := make([]sink.Sink, 0, len(cfg.Destinations))
	for _, dest := range cfg.Destinations {
		switch dest {
		case config.DestConsole:
			sinks = append(sinks, sink.NewConsole(format))
		case config.DestFile:
			sinks = append(sinks, sink.NewFile(cfg.File.Path, format))
		case config.DestDatabase:
			sinks = append(sinks, sink.NewDatabase(cfg.Database))
		case config.DestMQTT:
			sinks = append(sinks, sink.NewMQTT(cfg.MQTT, cfg.Service))
		case config.DestInfluxDB:
			sinks = append(sinks, sink.NewInflux(cfg.InfluxDB))
		default:
			return nil, fmt.Errorf("logger: unknown destination %q", dest)
		}
	}

	return &Logger{
		service:   cfg.Service,
		threshold: threshold,
		sinks:     sinks,
		redactor:  redactor,
		fallback:  newFallback(),
	}, nil
}

// NewWithSinks wires a Logger directly to the given sinks, bypassing
// configuration. A nil redactor means the default rule set.
func NewWithSinks(service string, threshold record.Level, r *redact.Redactor, sinks ...sink.Sink) *Logger {
	if r == nil {
		r = redact.Default()
	}
	return &Logger{
		service:   service,
		threshold: threshold,
		sinks:     sinks,
		redactor:  r,
		fallback:  newFallback(),
	}
}

// newFallback builds the diagnostics logger that receives sink-failure
// reports. It writes JSON to stderr so pipeline trouble stays visible
// even when every configured sink is broken.
func newFallback() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	return slog.New(handler).With("component", "obskit")
}

// With returns a child Logger sharing this Logger's sinks, threshold
// and redaction rules, with extra default fields attached to every
// record. Call-site fields win on key collision. The default values
// are validated when each record is built.
func (l *Logger) With(fields map[string]any) *Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.defaults)+len(fields))
	for key, value := range l.defaults {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}

	child := *l
	child.defaults = merged
	return &child
}

// Service returns the bound service name.
func (l *Logger) Service() string {
	return l.service
}

// Log builds, redacts, and fans out one record.
//
// Below-threshold calls short-circuit before any record is built.
// Construction errors (invalid level, unsupported field type) are
// returned to the caller; sink failures are collected with
// errors.Join, reported to the fallback diagnostics logger, and never
// panic.
func (l *Logger) Log(level record.Level, message string, fields map[string]any) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", record.ErrInvalidLevel, int(level))
	}
	if level < l.threshold {
		return nil
	}

	rec, err := record.New(l.service, level, message, l.mergeFields(fields))
	if err != nil {
		return err
	}
	return l.dispatch(rec)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(message string, fields map[string]any) error {
	return l.Log(record.LevelDebug, message, fields)
}

// Info logs at INFO level.
func (l *Logger) Info(message string, fields map[string]any) error {
	return l.Log(record.LevelInfo, message, fields)
}

// Warn logs at WARN level.
func (l *Logger) Warn(message string, fields map[string]any) error {
	return l.Log(record.LevelWarn, message, fields)
}

// Error logs at ERROR level.
func (l *Logger) Error(message string, fields map[string]any) error {
	return l.Log(record.LevelError, message, fields)
}

// Metric encodes a metric sample and routes it through the same
// redact+fan-out path as Log. The level threshold does not apply.
func (l *Logger) Metric(name string, value any, tags map[string]string) error {
	return l.metric(name, value, tags, metric.Options{})
}

// Inc emits a counter-style metric sample.
func (l *Logger) Inc(name string, n int, tags map[string]string) error {
	return l.metric(name, n, tags, metric.Options{Type: metric.TypeCounter})
}

// Observe emits a timer-style metric sample with a unit label
// (e.g. "ms").
func (l *Logger) Observe(name string, value float64, unit string, tags map[string]string) error {
	return l.metric(name, value, tags, metric.Options{Unit: unit, Type: metric.TypeTimer})
}

// Timing starts a timer and returns a function that emits the elapsed
// time in milliseconds when called:
//
//	defer log.Timing("worker.handle_ms", nil)()
//
// Sink failures during the deferred emit are already reported to the
// fallback diagnostics logger, so the closure swallows the error.
func (l *Logger) Timing(name string, tags map[string]string) func() {
	start := time.Now()
	return func() {
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)
		_ = l.Observe(name, elapsed, "ms", tags)
	}
}

// metric is the shared encode-and-dispatch path.
func (l *Logger) metric(name string, value any, tags map[string]string, opts metric.Options) error {
	rec, err := metric.EncodeWithOptions(l.service, name, value, tags, opts)
	if err != nil {
		return err
	}

	// Default fields ride along, but never shadow the reserved keys.
	// They bypass the record constructor here, so validate them the
	// same way the Log path does before they reach any sink.
	if err := record.ValidateFields(l.defaults); err != nil {
		return err
	}
	for key, val := range l.defaults {
		if _, taken := rec.Fields[key]; !taken {
			rec.Fields[key] = val
		}
	}
	return l.dispatch(rec)
}

// dispatch applies the single redaction pass and fans the record out
// to every sink, collecting per-sink errors without aborting.
func (l *Logger) dispatch(rec record.Record) error {
	rec = l.redactor.Redact(rec)

	var errs []error
	for _, s := range l.sinks {
		if err := l.write(s, rec); err != nil {
			l.fallback.Warn("sink write failed",
				"sink", s.Name(),
				"service", l.service,
				"error", err.Error(),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// write isolates one sink call, converting a panic into a sink error
// so one misbehaving sink cannot take down the fan-out.
func (l *Logger) write(s sink.Sink, rec record.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", sink.ErrWriteFailed, s.Name(), r)
		}
	}()
	return s.Write(rec)
}

// mergeFields overlays call-site fields on the Logger's defaults.
func (l *Logger) mergeFields(fields map[string]any) map[string]any {
	if len(l.defaults) == 0 {
		return fields
	}
	merged := make(map[string]any, len(l.defaults)+len(fields))
	for key, value := range l.defaults {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return merged
}

// Close closes every sink, joining their errors.
func (l *Logger) Close() error {
	var errs []error
	for _, s := range l.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
