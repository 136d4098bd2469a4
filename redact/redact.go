package redact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/record"
)

// DefaultPlaceholder replaces sensitive values when no placeholder is
// configured. It contains characters outside every default value
// pattern, which keeps redaction idempotent.
const DefaultPlaceholder = "***REDACTED***"

// defaultFieldNames are always-active sensitive key substrings.
// Matching is case-insensitive.
var defaultFieldNames = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"credential",
	"private_key",
}

// defaultValuePatterns are always-active value-shape rules:
// bearer-token strings, long hex blobs, and long base64 blobs.
var defaultValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`\b[0-9a-fA-F]{32,}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9+/]{40,}={0,2}\b`),
}

// Redactor scans record fields and replaces sensitive content with a
// placeholder. A Redactor is immutable after construction and safe for
// concurrent use from multiple goroutines.
type Redactor struct {
	names       []string
	patterns    []*regexp.Regexp
	placeholder string
}

// New creates a Redactor from the redaction configuration.
//
// The safe default field names and value patterns are always active;
// configured names and patterns extend them. The placeholder must not
// be matched by any active value pattern, default or configured: a
// matching pair would break the idempotence guarantee, because the
// substituted text would itself be redacted on the next pass.
//
// Parameters:
//   - cfg: Redaction configuration from config.yaml
//
// Returns:
//   - *Redactor: Ready-to-use redactor
//   - error: If a configured value pattern fails to compile, or if any
//     active value pattern matches the placeholder
func New(cfg config.RedactionConfig) (*Redactor, error) {
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	names := make([]string, 0, len(defaultFieldNames)+len(cfg.FieldNames))
	names = append(names, defaultFieldNames...)
	for _, name := range cfg.FieldNames {
		names = append(names, strings.ToLower(name))
	}

	patterns := make([]*regexp.Regexp, 0, len(defaultValuePatterns)+len(cfg.ValuePatterns))
	patterns = append(patterns, defaultValuePatterns...)
	for _, raw := range cfg.ValuePatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("redact: compiling value pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}

	for _, re := range patterns {
		if re.MatchString(placeholder) {
			return nil, fmt.Errorf("redact: placeholder %q is matched by value pattern %q, redaction would not be idempotent", placeholder, re.String())
		}
	}

	return &Redactor{
		names:       names,
		patterns:    patterns,
		placeholder: placeholder,
	}, nil
}

// Default returns a Redactor with only the built-in rule set active.
func Default() *Redactor {
	r, err := New(config.RedactionConfig{})
	if err != nil {
		// The empty config cannot fail to compile.
		panic(err)
	}
	return r
}

// Placeholder returns the replacement text this Redactor emits.
func (r *Redactor) Placeholder() string {
	return r.placeholder
}

// Redact returns a copy of rec with sensitive field values replaced.
//
// The input record is not mutated; nested maps and slices are copied
// before transformation. Values of unknown types pass through
// unchanged — redaction never fails.
func (r *Redactor) Redact(rec record.Record) record.Record {
	if len(rec.Fields) == 0 {
		return rec
	}
	out := rec
	out.Fields = r.redactMap(rec.Fields)
	return out
}

// redactMap deep-copies a fields map, applying both strategies.
func (r *Redactor) redactMap(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if r.nameMatches(key) {
			out[key] = r.placeholder
			continue
		}
		out[key] = r.redactValue(value)
	}
	return out
}

// redactValue applies value-based rules and recurses into containers.
func (r *Redactor) redactValue(value any) any {
	switch v := value.(type) {
	case string:
		return r.redactString(v)
	case map[string]any:
		return r.redactMap(v)
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, nested := range v {
			if r.nameMatches(key) {
				out[key] = r.placeholder
				continue
			}
			out[key] = r.redactString(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = r.redactValue(nested)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, nested := range v {
			out[i] = r.redactString(nested)
		}
		return out
	default:
		return value
	}
}

// redactString replaces pattern matches, preserving surrounding text.
func (r *Redactor) redactString(s string) string {
	for _, re := range r.patterns {
		s = re.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// nameMatches reports whether a field key contains a sensitive name.
func (r *Redactor) nameMatches(key string) bool {
	lower := strings.ToLower(key)
	for _, name := range r.names {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}
