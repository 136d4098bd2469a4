package record

import (
	"fmt"
	"strings"
)

// Level is the severity of a Record.
//
// Levels are ordered: LevelDebug < LevelInfo < LevelWarn < LevelError.
// The Logger uses this ordering for threshold filtering.
type Level int

// The four defined levels, in ascending severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a string log level to a Level.
//
// Matching is case-insensitive; "warning" is accepted as an alias
// for "warn".
//
// Returns:
//   - Level: The parsed level
//   - error: ErrInvalidLevel if the string is not a recognised level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelError
}

// String returns the canonical upper-case name (DEBUG, INFO, WARN, ERROR).
// This is the form persisted by the database sink and written on
// console/file lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialise as
// their canonical names in JSON output.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
