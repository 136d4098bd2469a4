package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fernworks/obskit/record"
)

// Console writes one structured line per record to the standard
// streams. ERROR and WARN records go to stderr, everything else to
// stdout.
//
// Thread Safety:
//   - Writes are serialised by an internal mutex, so concurrent
//     callers never interleave partial lines.
type Console struct {
	mu     sync.Mutex
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewConsole creates a console sink with the given line format
// (config.FormatJSON or config.FormatText).
func NewConsole(format string) *Console {
	return &Console{
		format: format,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// NewConsoleWithWriters creates a console sink writing to the given
// streams instead of os.Stdout/os.Stderr. Used by tests and by hosts
// that capture output.
func NewConsoleWithWriters(format string, stdout, stderr io.Writer) *Console {
	return &Console{
		format: format,
		stdout: stdout,
		stderr: stderr,
	}
}

// Write serialises the record and writes it to the level-selected
// stream. It only fails if the underlying stream does.
func (c *Console) Write(rec record.Record) error {
	line, err := encodeLine(rec, c.format)
	if err != nil {
		return fmt.Errorf("%w: console: %w", ErrWriteFailed, err)
	}

	out := c.stdout
	if rec.Level >= record.LevelWarn {
		out = c.stderr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := out.Write(line); err != nil {
		return fmt.Errorf("%w: console: %w", ErrWriteFailed, err)
	}
	return nil
}

// Name returns "console".
func (c *Console) Name() string {
	return "console"
}

// Close is a no-op; the standard streams are not owned by the sink.
func (c *Console) Close() error {
	return nil
}
