package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fernworks/obskit/record"
)

// File permission modes, matching the database sink's treatment of
// data it writes on behalf of the host.
const (
	fileDirPermissions = 0750
	fileLogPermissions = 0600
)

// File appends one structured line per record to a log file, creating
// the file and its parent directories on first write.
//
// Rotation is delegated to external tooling; the sink only ever opens
// in append mode, so rotated-away files are simply recreated.
//
// Thread Safety:
//   - The open handle is shared by all callers and writes are
//     serialised by an internal mutex, so lines never interleave.
type File struct {
	mu     sync.Mutex
	path   string
	format string
	file   *os.File
}

// NewFile creates a file sink for the given path and line format.
//
// The file is opened lazily on first Write so that a misconfigured
// path surfaces as a per-write ErrWriteFailed instead of a
// construction failure, keeping sink failures out of the caller's
// control flow.
func NewFile(path, format string) *File {
	return &File{
		path:   path,
		format: format,
	}
}

// Write appends one line. Permission or disk failures are returned
// wrapping ErrWriteFailed; the record is dropped.
func (f *File) Write(rec record.Record) error {
	line, err := encodeLine(rec, f.format)
	if err != nil {
		return fmt.Errorf("%w: file %s: %w", ErrWriteFailed, f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := f.open(); err != nil {
			return fmt.Errorf("%w: file %s: %w", ErrWriteFailed, f.path, err)
		}
	}

	if _, err := f.file.Write(line); err != nil {
		return fmt.Errorf("%w: file %s: %w", ErrWriteFailed, f.path, err)
	}
	return nil
}

// open creates parent directories and the file itself. Caller holds
// the mutex.
func (f *File) open() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, fileDirPermissions); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileLogPermissions)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	f.file = file
	return nil
}

// Name returns "file".
func (f *File) Name() string {
	return "file"
}

// Close closes the underlying file handle if one was opened.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}
