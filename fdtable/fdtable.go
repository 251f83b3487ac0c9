// Package fdtable tracks file descriptors the traced child has open, as
// observed from open/openat and close syscall exits.
package fdtable

import "time"

// UnknownFilename is used when the filename behind a descriptor could not
// be resolved. The tracer does not read the child's memory at open() entry
// to decode the path argument directly; filenames instead come from
// /proc/<pid>/fd/<n> after the fact, and this is the fallback when that
// resolution fails.
const UnknownFilename = "<unknown>"

// Entry is one live file descriptor.
type Entry struct {
	FD           int
	Filename     string
	Flags        int
	BytesRead    int64
	BytesWritten int64
	OpenedAt     time.Time
}

// Table holds every file descriptor currently open from the traced
// child's perspective. The zero value is ready to use.
type Table struct {
	live    map[int]*Entry
	opened  int
	closed  int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{live: map[int]*Entry{}}
}

// Open records a newly-opened descriptor and increments the opened
// counter.
func (t *Table) Open(fd int, filename string, flags int, at time.Time) {
	if t.live == nil {
		t.live = map[int]*Entry{}
	}
	if filename == "" {
		filename = UnknownFilename
	}
	t.live[fd] = &Entry{FD: fd, Filename: filename, Flags: flags, OpenedAt: at}
	t.opened++
}

// Close removes the descriptor and increments the closed counter. It
// reports whether the fd was known; a close of an unknown fd still counts
// toward ClosedCount, since the syscall itself succeeded.
func (t *Table) Close(fd int) bool {
	t.closed++
	if _, ok := t.live[fd]; !ok {
		return false
	}
	delete(t.live, fd)
	return true
}

// OpenedCount returns the number of successful open/openat exits observed.
func (t *Table) OpenedCount() int { return t.opened }

// ClosedCount returns the number of successful close exits observed.
func (t *Table) ClosedCount() int { return t.closed }

// Len returns the number of descriptors still open.
func (t *Table) Len() int { return len(t.live) }

// Range calls fn once per live descriptor. Iteration order is unspecified.
func (t *Table) Range(fn func(Entry)) {
	for _, e := range t.live {
		fn(*e)
	}
}

// Clone returns a Table holding an independent copy of every live
// descriptor and the running open/close counters. Used to take a stable
// snapshot of in-flight state -- reflection-based deep copy can't reach
// live/opened/closed, since they are unexported.
func (t *Table) Clone() *Table {
	c := NewTable()
	for fd, e := range t.live {
		cp := *e
		c.live[fd] = &cp
	}
	c.opened = t.opened
	c.closed = t.closed
	return c
}
