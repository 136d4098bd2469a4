package sink

import (
	"fmt"
	"sync"

	"github.com/fernworks/obskit/record"
)

// Memory captures records in process. It exists for tests — both this
// module's and host applications' — where asserting on emitted records
// or counting Write calls matters more than real I/O.
type Memory struct {
	mu      sync.Mutex
	records []record.Record
	calls   int
	err     error
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// FailWith makes every subsequent Write return the given error
// (wrapped in ErrWriteFailed by Write when non-nil). Pass nil to heal
// the sink.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Write records the call and stores the record unless a failure is
// injected.
func (m *Memory) Write(rec record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return fmt.Errorf("%w: memory: %w", ErrWriteFailed, m.err)
	}
	m.records = append(m.records, rec)
	return nil
}

// Calls returns how many times Write was invoked, including failed
// writes.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Records returns a copy of the captured records.
func (m *Memory) Records() []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Name returns "memory".
func (m *Memory) Name() string {
	return "memory"
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
