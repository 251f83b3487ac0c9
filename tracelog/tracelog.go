// Package tracelog appends a raw per-syscall/per-event log, distinct from
// the final summary report, guarded against concurrent writers so two
// oswatch invocations can safely target the same log path.
package tracelog

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/arctir/oswatch/clock"
)

// Writer appends newline-delimited event lines to a single log file,
// taking an exclusive flock for the duration of each write.
type Writer struct {
	file *os.File
	lock *flock.Flock
}

// Open creates (or appends to) the trace log at path and prepares its
// companion lock file. The lock is acquired per write, not held for the
// lifetime of the Writer, so other processes can interleave their own
// events between oswatch runs against the same path.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening trace log %s: %w", path, err)
	}
	return &Writer{file: f, lock: flock.New(path + ".lock")}, nil
}

// WriteEvent appends a single timestamped event line.
func (w *Writer) WriteEvent(event string) error {
	if w == nil {
		return nil
	}
	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("locking trace log: %w", err)
	}
	defer w.lock.Unlock()

	line := fmt.Sprintf("%s %s\n", clock.Now().Format("15:04:05.000000"), event)
	_, err := w.file.WriteString(line)
	return err
}

// Close releases the lock file handle and closes the log file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	_ = w.lock.Close()
	return w.file.Close()
}
