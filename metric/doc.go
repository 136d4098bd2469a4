// Package metric encodes application metrics as structured log records.
//
// obskit deliberately has no separate metrics pipeline: a metric sample
// is a record.Record carrying the reserved fields metric_name,
// metric_value and metric_tags, so metrics share the logging transport,
// the redaction pass and the sink fan-out. Metric records are emitted
// at INFO level by convention.
//
// Encode only builds the record; dispatch is the Logger's job. This
// keeps encoding and transport decoupled:
//
//	rec, err := metric.Encode("billing-api", "requests_total", 1,
//	    map[string]string{"route": "/health"})
package metric
