package stats

import (
	"testing"
	"time"

	"github.com/arctir/oswatch/config"
)

func TestRecordSyscallWithinBounds(t *testing.T) {
	s := New("/bin/true", nil, config.Default(), false)
	s.RecordSyscall(2) // open
	s.RecordSyscall(2)

	if s.SyscallCounts[2] != 2 {
		t.Logf("expected syscall 2 to be counted twice, got %d", s.SyscallCounts[2])
		t.Fail()
	}
	if s.TotalSyscalls != 2 {
		t.Logf("expected total syscalls to be 2, got %d", s.TotalSyscalls)
		t.Fail()
	}
}

func TestRecordSyscallOutOfBoundsIsIgnored(t *testing.T) {
	s := New("/bin/true", nil, config.Default(), false)
	s.RecordSyscall(-1)
	s.RecordSyscall(999999)

	if s.TotalSyscalls != 0 {
		t.Logf("expected out-of-range syscall numbers to be ignored, got total %d", s.TotalSyscalls)
		t.Fail()
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New("/bin/true", []string{"a"}, config.Default(), true)
	s.Mappings.Insert(0x1000, 1<<16, "mmap (library)", time.Now())
	s.Heap.TrackAlloc(0x2000, 32)
	s.Files.Open(3, "/etc/hosts", 0, time.Now())

	snap := s.Snapshot()

	s.Mappings.Insert(0x9000, 1<<16, "mmap (library)", time.Now())
	s.Heap.TrackAlloc(0x3000, 8)
	s.Files.Open(4, "/etc/shadow", 0, time.Now())

	if snap.Mappings.Len() != 1 {
		t.Logf("expected snapshot mappings to be frozen at 1 entry, got %d", snap.Mappings.Len())
		t.Fail()
	}
	if snap.Heap.Live() != 1 {
		t.Logf("expected snapshot heap to be frozen at 1 live block, got %d", snap.Heap.Live())
		t.Fail()
	}
	if snap.Files.Len() != 1 {
		t.Logf("expected snapshot files to be frozen at 1 open fd, got %d", snap.Files.Len())
		t.Fail()
	}
	if snap.Program != "/bin/true" {
		t.Logf("expected snapshot program to be %q, got %q", "/bin/true", snap.Program)
		t.Fail()
	}
}
