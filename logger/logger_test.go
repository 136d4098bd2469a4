package logger

import (
	"errors"
	"testing"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/metric"
	"github.com/fernworks/obskit/record"
	"github.com/fernworks/obskit/redact"
	"github.com/fernworks/obskit/sink"
)

func TestLog_BelowThresholdProducesZeroWrites(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelWarn, nil, mem)

	if err := log.Debug("noise", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := log.Info("noise", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mem.Calls() != 0 {
		t.Errorf("sink saw %d writes, want 0", mem.Calls())
	}

	if err := log.Warn("signal", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.Calls() != 1 {
		t.Errorf("sink saw %d writes, want 1", mem.Calls())
	}
}

func TestLog_InvalidLevelSurfaced(t *testing.T) {
	log := NewWithSinks("svc", record.LevelDebug, nil, sink.NewMemory())

	if err := log.Log(record.Level(99), "msg", nil); !errors.Is(err, record.ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestLog_UnsupportedFieldSurfaced(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	err := log.Info("msg", map[string]any{"ch": make(chan int)})
	if !errors.Is(err, record.ErrUnsupportedFieldType) {
		t.Errorf("expected ErrUnsupportedFieldType, got %v", err)
	}
	if mem.Calls() != 0 {
		t.Errorf("record with invalid fields reached a sink")
	}
}

func TestLog_RedactsBeforeDispatch(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	err := log.Info("user login", map[string]any{
		"user_id":  "42",
		"password": "s3cr3t",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs := mem.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Fields["password"] != redact.DefaultPlaceholder {
		t.Errorf("password = %v, want placeholder", recs[0].Fields["password"])
	}
	if recs[0].Fields["user_id"] != "42" {
		t.Errorf("user_id = %v, want unchanged", recs[0].Fields["user_id"])
	}
}

func TestLog_FanOutSurvivesBrokenSink(t *testing.T) {
	broken := sink.NewMemory()
	broken.FailWith(errors.New("disk full"))
	healthy := sink.NewMemory()

	log := NewWithSinks("svc", record.LevelDebug, nil, broken, healthy)

	err := log.Info("msg", nil)
	if !errors.Is(err, sink.ErrWriteFailed) {
		t.Errorf("expected joined ErrWriteFailed, got %v", err)
	}
	if healthy.Calls() != 1 || len(healthy.Records()) != 1 {
		t.Errorf("healthy sink did not receive the record")
	}
	if broken.Calls() != 1 {
		t.Errorf("broken sink was not attempted")
	}
}

type panickingSink struct{}

func (panickingSink) Write(record.Record) error { panic("boom") }
func (panickingSink) Name() string              { return "panicking" }
func (panickingSink) Close() error              { return nil }

func TestLog_SinkPanicContained(t *testing.T) {
	healthy := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, panickingSink{}, healthy)

	err := log.Info("msg", nil)
	if !errors.Is(err, sink.ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed from panicking sink, got %v", err)
	}
	if healthy.Calls() != 1 {
		t.Error("panic in one sink aborted fan-out")
	}
}

func TestMetric_IgnoresThreshold(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelError, nil, mem)

	if err := log.Metric("requests_total", 1, map[string]string{"route": "/health"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs := mem.Records()
	if len(recs) != 1 {
		t.Fatalf("metric below threshold was filtered: %d records", len(recs))
	}

	rec := recs[0]
	if rec.Level != record.LevelInfo {
		t.Errorf("level = %v, want LevelInfo", rec.Level)
	}
	if rec.Kind != record.KindMetric {
		t.Errorf("kind = %v, want metric", rec.Kind)
	}
	if rec.Fields[record.FieldMetricName] != "requests_total" {
		t.Errorf("metric_name = %v", rec.Fields[record.FieldMetricName])
	}
	if rec.Fields[record.FieldMetricValue] != float64(1) {
		t.Errorf("metric_value = %v", rec.Fields[record.FieldMetricValue])
	}
	tags, ok := rec.Fields[record.FieldMetricTags].(map[string]string)
	if !ok || tags["route"] != "/health" {
		t.Errorf("metric_tags = %v", rec.Fields[record.FieldMetricTags])
	}
}

func TestMetric_EncodingErrorsSurfaced(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	if err := log.Metric("", 1, nil); !errors.Is(err, metric.ErrInvalidMetricName) {
		t.Errorf("expected ErrInvalidMetricName, got %v", err)
	}
	if err := log.Metric("m", "not a number", nil); !errors.Is(err, metric.ErrInvalidMetricValue) {
		t.Errorf("expected ErrInvalidMetricValue, got %v", err)
	}
	if mem.Calls() != 0 {
		t.Error("invalid metric reached a sink")
	}
}

func TestMetric_TagsAreRedacted(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	if err := log.Metric("auth_failures", 1, map[string]string{"token": "abc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags := mem.Records()[0].Fields[record.FieldMetricTags].(map[string]string)
	if tags["token"] != redact.DefaultPlaceholder {
		t.Errorf("tag token = %q, want placeholder", tags["token"])
	}
}

func TestInc(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	if err := log.Inc("jobs_done", 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := mem.Records()[0]
	if rec.Fields[record.FieldMetricValue] != float64(3) {
		t.Errorf("metric_value = %v, want 3", rec.Fields[record.FieldMetricValue])
	}
	if rec.Fields[record.FieldMetricType] != metric.TypeCounter {
		t.Errorf("metric_type = %v, want counter", rec.Fields[record.FieldMetricType])
	}
}

func TestObserveAndTiming(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	if err := log.Observe("handle_ms", 12.5, "ms", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := mem.Records()[0]
	if rec.Fields[record.FieldMetricUnit] != "ms" {
		t.Errorf("metric_unit = %v, want ms", rec.Fields[record.FieldMetricUnit])
	}
	if rec.Fields[record.FieldMetricType] != metric.TypeTimer {
		t.Errorf("metric_type = %v, want timer", rec.Fields[record.FieldMetricType])
	}

	done := log.Timing("block_ms", map[string]string{"component": "worker"})
	done()

	recs := mem.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	timing := recs[1]
	if timing.Fields[record.FieldMetricName] != "block_ms" {
		t.Errorf("metric_name = %v, want block_ms", timing.Fields[record.FieldMetricName])
	}
	value, ok := timing.Fields[record.FieldMetricValue].(float64)
	if !ok || value < 0 {
		t.Errorf("elapsed value = %v, want non-negative float", timing.Fields[record.FieldMetricValue])
	}
}

func TestWith_DefaultFields(t *testing.T) {
	mem := sink.NewMemory()
	base := NewWithSinks("svc", record.LevelDebug, nil, mem)
	child := base.With(map[string]any{"component": "mqtt", "region": "eu"})

	if err := child.Info("connected", map[string]any{"region": "us"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := mem.Records()[0]
	if rec.Fields["component"] != "mqtt" {
		t.Errorf("component = %v, want mqtt", rec.Fields["component"])
	}
	if rec.Fields["region"] != "us" {
		t.Errorf("call-site field did not win: region = %v", rec.Fields["region"])
	}

	// The parent is unaffected.
	if err := base.Info("plain", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := mem.Records()[1].Fields["component"]; present {
		t.Error("parent logger inherited the child's defaults")
	}
}

func TestWith_DefaultsRideOnMetrics(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem).
		With(map[string]any{"instance_id": "i-1", record.FieldMetricName: "shadow"})

	if err := log.Metric("requests_total", 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := mem.Records()[0]
	if rec.Fields["instance_id"] != "i-1" {
		t.Errorf("instance_id = %v, want i-1", rec.Fields["instance_id"])
	}
	if rec.Fields[record.FieldMetricName] != "requests_total" {
		t.Errorf("reserved key was shadowed by a default field: %v",
			rec.Fields[record.FieldMetricName])
	}
}

func TestWith_InvalidDefaultRejectedOnMetrics(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem).
		With(map[string]any{"bad": make(chan int)})

	err := log.Metric("requests_total", 1, nil)
	if !errors.Is(err, record.ErrUnsupportedFieldType) {
		t.Fatalf("err = %v, want ErrUnsupportedFieldType", err)
	}
	if got := len(mem.Records()); got != 0 {
		t.Errorf("records reached sink = %d, want 0", got)
	}

	// The Log path rejects the same default the same way.
	if err := log.Info("msg", nil); !errors.Is(err, record.ErrUnsupportedFieldType) {
		t.Errorf("Log err = %v, want ErrUnsupportedFieldType", err)
	}
}

func TestLogError(t *testing.T) {
	mem := sink.NewMemory()
	log := NewWithSinks("svc", record.LevelDebug, nil, mem)

	err := log.LogError(CodeDBError, "db_writer", errors.New("connection lost"), map[string]any{"attempt": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := mem.Records()[0]
	if rec.Level != record.LevelError {
		t.Errorf("level = %v, want LevelError", rec.Level)
	}
	if rec.Fields["event"] != "error" {
		t.Errorf("event = %v, want error", rec.Fields["event"])
	}
	if rec.Fields["error_code"] != string(CodeDBError) {
		t.Errorf("error_code = %v, want %v", rec.Fields["error_code"], CodeDBError)
	}
	if rec.Fields["component"] != "db_writer" {
		t.Errorf("component = %v, want db_writer", rec.Fields["component"])
	}
	if rec.Fields["error"] != "connection lost" {
		t.Errorf("error = %v, want connection lost", rec.Fields["error"])
	}
	if rec.Fields["attempt"] != 2 {
		t.Errorf("attempt = %v, want 2", rec.Fields["attempt"])
	}
	if rec.Message != "connection lost" {
		t.Errorf("message = %q, want connection lost", rec.Message)
	}
}

func TestNew_FromConfig(t *testing.T) {
	cfg := config.Default()
	log, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer log.Close() //nolint:errcheck

	if log.Service() != "obskit-app" {
		t.Errorf("service = %q, want obskit-app", log.Service())
	}
	if len(log.sinks) != 1 || log.sinks[0].Name() != "console" {
		t.Errorf("default config should wire exactly the console sink")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Destinations = []string{"carrier-pigeon"}

	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown destination")
	}
}

func TestClose_JoinsSinkErrors(t *testing.T) {
	log := NewWithSinks("svc", record.LevelDebug, nil, sink.NewMemory(), sink.NewMemory())
	if err := log.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
