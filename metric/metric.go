package metric

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernworks/obskit/record"
)

// Encoding errors returned to the calling code.
var (
	// ErrInvalidMetricName is returned when the metric name is empty.
	ErrInvalidMetricName = errors.New("metric: name must not be empty")

	// ErrInvalidMetricValue is returned when the value is not an
	// integer or floating point kind.
	ErrInvalidMetricValue = errors.New("metric: value must be numeric")
)

// Metric type conventions carried in the metric_type field.
const (
	TypeCounter = "counter"
	TypeTimer   = "timer"
	TypeGauge   = "gauge"
)

// Options carries the optional metric attributes.
type Options struct {
	// Unit labels the value (e.g. "ms", "bytes"). Empty means unset.
	Unit string

	// Type classifies the sample (counter, timer, gauge). Empty means
	// unset.
	Type string
}

// Encode converts a (name, value, tags) triple into a metric Record.
//
// The record is produced at INFO level with Kind = KindMetric and the
// reserved fields populated. Nil tags are normalised to an empty map,
// so metric_tags is always present. Encode does not dispatch to any
// sink — the Logger routes the returned record.
//
// Parameters:
//   - service: Emitting application identity
//   - name: Metric name, must be non-empty
//   - value: Numeric sample (any integer or float kind)
//   - tags: Dimension labels, may be nil
//
// Returns:
//   - record.Record: The metric record
//   - error: ErrInvalidMetricName or ErrInvalidMetricValue
func Encode(service, name string, value any, tags map[string]string) (record.Record, error) {
	return EncodeWithOptions(service, name, value, tags, Options{})
}

// EncodeWithOptions is Encode with unit/type attributes attached via
// the metric_unit and metric_type fields when set.
func EncodeWithOptions(service, name string, value any, tags map[string]string, opts Options) (record.Record, error) {
	if strings.TrimSpace(name) == "" {
		return record.Record{}, ErrInvalidMetricName
	}

	number, ok := toFloat64(value)
	if !ok {
		return record.Record{}, fmt.Errorf("%w: got %T", ErrInvalidMetricValue, value)
	}

	if tags == nil {
		tags = map[string]string{}
	}

	fields := map[string]any{
		record.FieldMetricName:  name,
		record.FieldMetricValue: number,
		record.FieldMetricTags:  tags,
	}
	if opts.Unit != "" {
		fields[record.FieldMetricUnit] = opts.Unit
	}
	if opts.Type != "" {
		fields[record.FieldMetricType] = opts.Type
	}

	return record.Record{
		Timestamp: time.Now(),
		Service:   service,
		Level:     record.LevelInfo,
		Message:   name,
		Fields:    fields,
		Kind:      record.KindMetric,
	}, nil
}

// toFloat64 normalises any integer or float kind to float64.
// Booleans are explicitly not numeric.
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
