package record

import "errors"

// Construction-time errors returned to the calling code.
// Use errors.Is() to check for these errors.
var (
	// ErrInvalidLevel is returned when a level is not one of the four
	// defined values (debug, info, warn, error).
	ErrInvalidLevel = errors.New("record: invalid level")

	// ErrUnsupportedFieldType is returned when a field value is not a
	// supported scalar or nested scalar kind.
	ErrUnsupportedFieldType = errors.New("record: unsupported field type")
)
