package record

import (
	"fmt"
	"time"
)

// Kind distinguishes ordinary log records from metric records.
//
// It is derived by the constructing code path (the metric encoder sets
// KindMetric) and is never set directly by callers.
type Kind string

// Record kinds.
const (
	KindLog    Kind = "log"
	KindMetric Kind = "metric"
)

// Reserved field keys used by the metrics-via-logs convention.
// A metric Record always carries FieldMetricName and FieldMetricValue;
// FieldMetricTags may be empty but is never absent.
const (
	FieldMetricName  = "metric_name"
	FieldMetricValue = "metric_value"
	FieldMetricTags  = "metric_tags"
	FieldMetricUnit  = "metric_unit"
	FieldMetricType  = "metric_type"
)

// Record is one structured observability event.
//
// Records are value types: sinks receive them by value and the redactor
// returns a transformed copy, so a Record handed to the pipeline is
// never mutated behind the caller's back.
type Record struct {
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Kind      Kind           `json:"record_kind"`
}

// New constructs a log Record with Timestamp set to the current time.
//
// The fields map is copied shallowly, so later mutation of the caller's
// map does not affect the Record. Nested values are validated but not
// copied; the redaction pass deep-copies before any transformation.
//
// Parameters:
//   - service: Emitting application identity (always present on output)
//   - level: One of the four defined levels
//   - message: Free-text message
//   - fields: Structured context, may be nil
//
// Returns:
//   - Record: The constructed record with Kind = KindLog
//   - error: ErrInvalidLevel or ErrUnsupportedFieldType
func New(service string, level Level, message string, fields map[string]any) (Record, error) {
	if !level.Valid() {
		return Record{}, fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	copied, err := copyFields(fields)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Timestamp: time.Now(),
		Service:   service,
		Level:     level,
		Message:   message,
		Fields:    copied,
		Kind:      KindLog,
	}, nil
}

// ValidateFields checks every value in a fields map against the
// supported type set without building a Record. Code paths that attach
// fields to an already-constructed Record (the metric encode path
// merging a Logger's default fields) use it to surface
// ErrUnsupportedFieldType at call time instead of at serialization.
func ValidateFields(fields map[string]any) error {
	for key, value := range fields {
		if err := validateValue(key, value); err != nil {
			return err
		}
	}
	return nil
}

// copyFields shallow-copies and validates a fields map.
func copyFields(fields map[string]any) (map[string]any, error) {
	if fields == nil {
		return nil, nil
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		if err := validateValue(key, value); err != nil {
			return nil, err
		}
		copied[key] = value
	}
	return copied, nil
}

// validateValue checks that a field value is a supported scalar or a
// nested map/slice of supported scalars.
func validateValue(key string, value any) error {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case map[string]any:
		for nestedKey, nested := range v {
			if err := validateValue(key+"."+nestedKey, nested); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		return nil
	case []any:
		for _, nested := range v {
			if err := validateValue(key, nested); err != nil {
				return err
			}
		}
		return nil
	case []string:
		return nil
	default:
		return fmt.Errorf("%w: field %q has type %T", ErrUnsupportedFieldType, key, value)
	}
}
