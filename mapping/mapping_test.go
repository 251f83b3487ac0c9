package mapping

import (
	"testing"
	"time"
)

func TestInsertAndRemove(t *testing.T) {
	tr := NewTracker(64 * 1024)
	now := time.Now()
	tr.Insert(0x7f0000, 1<<20, ClassMmapLibrary, now)

	if tr.Len() != 1 {
		t.Logf("expected 1 tracked block, got %d", tr.Len())
		t.Fail()
	}

	b, ok := tr.Remove(0x7f0000, 1<<20)
	if !ok {
		t.Fatalf("expected to find the block inserted at 0x7f0000")
	}
	if b.Class != ClassMmapLibrary {
		t.Logf("expected class %q, got %q", ClassMmapLibrary, b.Class)
		t.Fail()
	}
	if tr.Len() != 0 {
		t.Logf("expected 0 tracked blocks after remove, got %d", tr.Len())
		t.Fail()
	}
}

func TestRemoveUnknownAddressMisses(t *testing.T) {
	tr := NewTracker(64 * 1024)
	_, ok := tr.Remove(0xdeadbeef, 1<<20)
	if ok {
		t.Logf("expected removing an untracked address to report a miss")
		t.Fail()
	}
}

func TestInsertBelowThresholdIsIgnored(t *testing.T) {
	tr := NewTracker(64 * 1024)
	tr.Insert(0x7f0000, 4096, ClassMmapLibrary, time.Now())

	if tr.Len() != 0 {
		t.Logf("expected a sub-threshold region to be left untracked, got %d blocks", tr.Len())
		t.Fail()
	}
}

func TestRemoveBelowThresholdIsNotAMiss(t *testing.T) {
	tr := NewTracker(64 * 1024)
	_, ok := tr.Remove(0x7f0000, 4096)
	if !ok {
		t.Logf("expected releasing a never-tracked sub-threshold region to not count as a miss")
		t.Fail()
	}
}

func TestRangeVisitsAllBlocks(t *testing.T) {
	tr := NewTracker(0)
	tr.Insert(1, 1<<16, ClassBrk, time.Now())
	tr.Insert(2, 1<<16, ClassMmapLibrary, time.Now())

	count := 0
	tr.Range(func(Block) { count++ })
	if count != 2 {
		t.Logf("expected Range to visit 2 blocks, visited %d", count)
		t.Fail()
	}
}
