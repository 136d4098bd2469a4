package sink

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/record"
)

// encodeLine serialises a record as one self-contained line including
// the trailing newline, safe to grep and parse per line.
func encodeLine(rec record.Record, format string) ([]byte, error) {
	switch format {
	case config.FormatText:
		return []byte(encodeText(rec)), nil
	default:
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding record: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// encodeText renders a key=value line. Field keys are sorted so the
// output is deterministic and testable.
func encodeText(rec record.Record) string {
	var b strings.Builder
	b.WriteString("time=")
	b.WriteString(rec.Timestamp.Format(time.RFC3339))
	b.WriteString(" level=")
	b.WriteString(rec.Level.String())
	b.WriteString(" service=")
	b.WriteString(textValue(rec.Service))
	b.WriteString(" kind=")
	b.WriteString(string(rec.Kind))
	b.WriteString(" msg=")
	b.WriteString(textValue(rec.Message))

	keys := make([]string, 0, len(rec.Fields))
	for key := range rec.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(textValue(rec.Fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

// textValue renders a single field value for the text format. Strings
// needing quoting are quoted; containers fall back to compact JSON.
func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if v == "" || strings.ContainsAny(v, " \t\n\"=") {
			return strconv.Quote(v)
		}
		return v
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return strconv.Quote(fmt.Sprintf("%v", v))
		}
		return string(data)
	}
}
