// Package redact removes sensitive values from records before they
// reach any sink.
//
// Two detection strategies are applied to every record, in order:
//
//   - Name-based: field keys matching a sensitive-name pattern
//     (case-insensitive substring, e.g. "password", "token", "api_key")
//     have their value replaced wholesale with the placeholder,
//     regardless of value type.
//   - Value-based: string values not caught by name matching are
//     scanned against value patterns (bearer-token shapes, long hex and
//     base64 blobs) and matched substrings are replaced in place,
//     preserving surrounding text.
//
// Redaction recurses into nested maps and slices, never fails on
// malformed input, and is idempotent: the placeholder itself never
// matches a sensitive pattern, so redacting an already-redacted record
// is a no-op.
//
// # Policy
//
// The pattern set is configurable policy, not a fixed contract. A safe
// default set is always active; host applications may extend it via
// the redaction section of config.yaml:
//
//	redaction:
//	  placeholder: "***REDACTED***"
//	  field_names: ["session_cookie"]
//	  value_patterns: ['ghp_[A-Za-z0-9]{36}']
package redact
