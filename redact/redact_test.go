package redact

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/record"
)

func mustRecord(t *testing.T, fields map[string]any) record.Record {
	t.Helper()
	rec, err := record.New("test-svc", record.LevelInfo, "msg", fields)
	if err != nil {
		t.Fatalf("building record: %v", err)
	}
	return rec
}

func TestRedact_NameBased(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "password", key: "password"},
		{name: "uppercase key", key: "PASSWORD"},
		{name: "substring match", key: "db_password"},
		{name: "token", key: "auth_token"},
		{name: "secret", key: "client_secret"},
		{name: "api key", key: "api_key"},
		{name: "authorization", key: "authorization"},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecord(t, map[string]any{tt.key: "s3cr3t-value", "user_id": "42"})
			out := r.Redact(rec)

			if out.Fields[tt.key] != DefaultPlaceholder {
				t.Errorf("fields[%q] = %v, want placeholder", tt.key, out.Fields[tt.key])
			}
			if out.Fields["user_id"] != "42" {
				t.Errorf("fields[user_id] = %v, want unchanged", out.Fields["user_id"])
			}
		})
	}
}

func TestRedact_NameBasedReplacesNonStrings(t *testing.T) {
	r := Default()
	rec := mustRecord(t, map[string]any{"token": 12345})
	out := r.Redact(rec)

	if out.Fields["token"] != DefaultPlaceholder {
		t.Errorf("numeric sensitive field = %v, want placeholder", out.Fields["token"])
	}
}

func TestRedact_ValueBased(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "bearer token",
			value: "header was Bearer abc123DEF.456 today",
			want:  "header was " + DefaultPlaceholder + " today",
		},
		{
			name:  "long hex blob",
			value: "digest deadbeefdeadbeefdeadbeefdeadbeefdeadbeef done",
			want:  "digest " + DefaultPlaceholder + " done",
		},
		{
			name:  "short hex untouched",
			value: "digest deadbeef done",
			want:  "digest deadbeef done",
		},
		{
			name:  "plain text untouched",
			value: "user logged in from 10.0.0.1",
			want:  "user logged in from 10.0.0.1",
		},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecord(t, map[string]any{"note": tt.value})
			out := r.Redact(rec)
			if out.Fields["note"] != tt.want {
				t.Errorf("got %q, want %q", out.Fields["note"], tt.want)
			}
		})
	}
}

func TestRedact_Base64Blob(t *testing.T) {
	blob := strings.Repeat("Qk", 25) + "=="
	r := Default()
	rec := mustRecord(t, map[string]any{"payload": "blob " + blob})
	out := r.Redact(rec)

	got, _ := out.Fields["payload"].(string)
	if strings.Contains(got, blob) {
		t.Errorf("base64 blob survived redaction: %q", got)
	}
}

func TestRedact_Recursive(t *testing.T) {
	r := Default()
	rec := mustRecord(t, map[string]any{
		"request": map[string]any{
			"password": "hunter2",
			"headers":  map[string]string{"Authorization": "Bearer abc", "Accept": "text/plain"},
			"trace":    []any{"step one", map[string]any{"api_key": "k"}},
		},
	})
	out := r.Redact(rec)

	request, ok := out.Fields["request"].(map[string]any)
	if !ok {
		t.Fatalf("request field has type %T", out.Fields["request"])
	}
	if request["password"] != DefaultPlaceholder {
		t.Errorf("nested password = %v, want placeholder", request["password"])
	}

	headers, ok := request["headers"].(map[string]string)
	if !ok {
		t.Fatalf("headers field has type %T", request["headers"])
	}
	if headers["Authorization"] != DefaultPlaceholder {
		t.Errorf("authorization header = %q, want placeholder", headers["Authorization"])
	}
	if headers["Accept"] != "text/plain" {
		t.Errorf("accept header = %q, want unchanged", headers["Accept"])
	}

	trace, ok := request["trace"].([]any)
	if !ok {
		t.Fatalf("trace field has type %T", request["trace"])
	}
	nested, ok := trace[1].(map[string]any)
	if !ok {
		t.Fatalf("trace[1] has type %T", trace[1])
	}
	if nested["api_key"] != DefaultPlaceholder {
		t.Errorf("nested api_key = %v, want placeholder", nested["api_key"])
	}
}

func TestRedact_Idempotent(t *testing.T) {
	r := Default()
	rec := mustRecord(t, map[string]any{
		"password": "hunter2",
		"note":     "Bearer abc123 plus deadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		"count":    3,
		"nested":   map[string]any{"secret": true, "plain": "ok"},
	})

	once := r.Redact(rec)
	twice := r.Redact(once)

	if !reflect.DeepEqual(once.Fields, twice.Fields) {
		t.Errorf("redaction is not idempotent:\nonce:  %#v\ntwice: %#v", once.Fields, twice.Fields)
	}
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	r := Default()
	rec := mustRecord(t, map[string]any{
		"password": "hunter2",
		"nested":   map[string]any{"token": "abc"},
	})

	_ = r.Redact(rec)

	if rec.Fields["password"] != "hunter2" {
		t.Error("input record top-level field was mutated")
	}
	nested := rec.Fields["nested"].(map[string]any)
	if nested["token"] != "abc" {
		t.Error("input record nested field was mutated")
	}
}

func TestRedact_EmptyFields(t *testing.T) {
	r := Default()
	rec := mustRecord(t, nil)
	out := r.Redact(rec)
	if out.Fields != nil {
		t.Errorf("expected nil fields, got %v", out.Fields)
	}
}

func TestNew_CustomRules(t *testing.T) {
	r, err := New(config.RedactionConfig{
		Placeholder:   "[HIDDEN]",
		FieldNames:    []string{"session_cookie"},
		ValuePatterns: []string{`ghp_[A-Za-z0-9]{6}`},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := mustRecord(t, map[string]any{
		"Session_Cookie": "abc",
		"note":           "pushed with ghp_AAAAAA token-ish",
		"password":       "still default-matched",
	})
	out := r.Redact(rec)

	if out.Fields["Session_Cookie"] != "[HIDDEN]" {
		t.Errorf("custom field name not redacted: %v", out.Fields["Session_Cookie"])
	}
	if got := out.Fields["note"]; got != "pushed with [HIDDEN] token-ish" {
		t.Errorf("custom pattern not applied: %v", got)
	}
	if out.Fields["password"] != "[HIDDEN]" {
		t.Errorf("default rules not merged in: %v", out.Fields["password"])
	}
}

func TestNew_RejectsBadPatterns(t *testing.T) {
	if _, err := New(config.RedactionConfig{ValuePatterns: []string{"("}}); err == nil {
		t.Error("expected error for pattern that does not compile")
	}

	// A pattern matching the placeholder would break idempotence.
	if _, err := New(config.RedactionConfig{ValuePatterns: []string{`\*{3}`}}); err == nil {
		t.Error("expected error for pattern matching the placeholder")
	}
}

func TestNew_RejectsPlaceholderMatchedByDefaultPatterns(t *testing.T) {
	// A placeholder containing a long hex run is matched by a built-in
	// value pattern: each pass would re-redact the substituted text.
	hexy := "<<" + strings.Repeat("deadbeef", 4) + ">>"
	if _, err := New(config.RedactionConfig{Placeholder: hexy}); err == nil {
		t.Fatal("expected error for placeholder matched by a built-in pattern")
	}

	bearerish := "Bearer placeholder"
	if _, err := New(config.RedactionConfig{Placeholder: bearerish}); err == nil {
		t.Fatal("expected error for bearer-shaped placeholder")
	}

	// A benign custom placeholder still works and stays idempotent.
	r, err := New(config.RedactionConfig{Placeholder: "[HIDDEN]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := mustRecord(t, map[string]any{"note": "Bearer abc123"})
	once := r.Redact(rec)
	twice := r.Redact(once)
	if !reflect.DeepEqual(once.Fields, twice.Fields) {
		t.Errorf("redaction not idempotent with custom placeholder:\nonce:  %#v\ntwice: %#v", once.Fields, twice.Fields)
	}
}
