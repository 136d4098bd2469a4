package logger

import "github.com/fernworks/obskit/record"

// Code is a stable error code attached to error-event records.
// Dashboards and alerting key on these values, so existing codes must
// never be renamed.
type Code string

// The stable error codes.
const (
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeTimeout             Code = "TIMEOUT"
	CodeParseError          Code = "PARSE_ERROR"
	CodeConfigInvalid       Code = "CONFIG_INVALID"
	CodeDBError             Code = "DB_ERROR"
)

// LogError emits a structured error event: an ERROR-level record
// carrying event=error, the stable code, the failing component, and
// the error text, plus any extra fields.
//
// Parameters:
//   - code: Stable error code for dashboards/alerting
//   - component: The subsystem that failed (e.g. "db_writer")
//   - err: The failure; its Error() text lands in the error field
//   - fields: Extra context, may be nil
func (l *Logger) LogError(code Code, component string, err error, fields map[string]any) error {
	merged := make(map[string]any, len(fields)+4)
	for key, value := range fields {
		merged[key] = value
	}
	merged["event"] = "error"
	merged["error_code"] = string(code)
	merged["component"] = component

	message := "error event"
	if err != nil {
		merged["error"] = err.Error()
		message = err.Error()
	}
	return l.Log(record.LevelError, message, merged)
}
