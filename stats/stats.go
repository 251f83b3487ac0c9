// Package stats defines ProcessStats, the single aggregate that a
// supervisor run fills in while it traces a child process, and that the
// analyzer and report packages consume afterward.
package stats

import (
	"time"

	"github.com/mohae/deepcopy"

	"github.com/arctir/oswatch/config"
	"github.com/arctir/oswatch/fdtable"
	"github.com/arctir/oswatch/malloctable"
	"github.com/arctir/oswatch/mapping"
	"github.com/arctir/oswatch/syscalltab"
)

// ProcessStats is owned by a single supervisor run; nothing else writes
// to it concurrently while the run is in progress.
type ProcessStats struct {
	// Identity
	PID     int
	Program string
	Args    []string

	// Timing
	StartedAt         time.Time
	FinishedAt        time.Time
	TotalSyscallTime  float64 // milliseconds, summed across every syscall
	ProgramStarted    bool
	Verbose           bool

	// Syscall counters, indexed by syscall number (see syscalltab.MaxSyscallNum).
	SyscallCounts [syscalltab.MaxSyscallNum]uint64
	TotalSyscalls uint64

	// Kernel-level memory tracking (mmap/munmap/brk).
	Mappings      *mapping.Tracker
	HeapAllocated uint64
	HeapFreed     uint64

	// User-level memory tracking (malloc/free via the interceptor).
	Heap *malloctable.Table

	// File descriptor tracking.
	Files *fdtable.Table

	// ExitStatus is the traced child's exit code, or -1 if it was killed
	// by a signal.
	ExitStatus int
	// ExitSignal is set when the child terminated due to a signal rather
	// than a normal exit.
	ExitSignal int
}

// New returns a ProcessStats ready to be filled in by a supervisor run.
func New(program string, args []string, cfg config.Config, verbose bool) *ProcessStats {
	return &ProcessStats{
		Program:  program,
		Args:     append([]string(nil), args...),
		Mappings: mapping.NewTracker(cfg.Thresholds.MmapTrackingBytes),
		Heap:     malloctable.NewTable(),
		Files:    fdtable.NewTable(),
		Verbose:  verbose,
	}
}

// RecordSyscall updates the entry-time counters for a single observed
// syscall. It is a no-op for syscall numbers outside the tracked range
// rather than panicking on an out-of-range index.
func (s *ProcessStats) RecordSyscall(num int64) {
	if num < 0 || int(num) >= len(s.SyscallCounts) {
		return
	}
	s.SyscallCounts[num]++
	s.TotalSyscalls++
}

// Snapshot returns a deep copy of s, safe for the caller to retain and
// inspect after a partial failure unwinds the supervisor run that still
// holds the original. The scalar fields are copied with deepcopy; the
// three nested trackers carry unexported internals deepcopy's reflection
// can't reach, so each clones itself explicitly.
func (s *ProcessStats) Snapshot() *ProcessStats {
	cp := deepcopy.Copy(s).(*ProcessStats)
	cp.Mappings = s.Mappings.Clone()
	cp.Heap = s.Heap.Clone()
	cp.Files = s.Files.Clone()
	return cp
}
