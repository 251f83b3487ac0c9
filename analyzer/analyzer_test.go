package analyzer

import (
	"testing"
	"time"

	"github.com/arctir/oswatch/config"
	"github.com/arctir/oswatch/stats"
)

func TestAnalyzeLeakFree(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.HeapAllocated = 1024
	st.HeapFreed = 1024

	r := Analyze(st, cfg)
	if r.Verdict != VerdictLeakFree {
		t.Logf("expected verdict %q, got %q", VerdictLeakFree, r.Verdict)
		t.Fail()
	}
	if r.HeapLeaked != 0 {
		t.Logf("expected 0 heap leaked bytes, got %d", r.HeapLeaked)
		t.Fail()
	}
}

func TestHeapGrowthAloneDoesNotAffectVerdict(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.HeapAllocated = 4096
	st.HeapFreed = 1024

	r := Analyze(st, cfg)
	if r.HeapLeaked != 3072 {
		t.Logf("expected 3072 bytes of informational heap growth, got %d", r.HeapLeaked)
		t.Fail()
	}
	if r.Verdict != VerdictLeakFree {
		t.Logf("expected verdict %q since no user-level blocks leaked, got %q", VerdictLeakFree, r.Verdict)
		t.Fail()
	}
}

func TestAnalyzeClassifiesStdioNoiseSeparately(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.Heap.TrackAlloc(0x1000, 4096) // a configured stdio buffer size
	st.Heap.TrackAlloc(0x2000, 40)   // a real user allocation

	r := Analyze(st, cfg)
	if r.Verdict != VerdictHasLeaks {
		t.Logf("expected verdict %q 40-byte block is a genuine leak, got %q", VerdictHasLeaks, r.Verdict)
		t.Fail()
	}
	if len(r.UserLeaks) != 1 || r.UserLeaks[0].Address != 0x2000 {
		t.Logf("expected exactly the 40-byte block to be classified as a user leak, got %+v", r.UserLeaks)
		t.Fail()
	}
	if len(r.LibraryHeapNoise) != 1 || r.LibraryHeapNoise[0].Address != 0x1000 {
		t.Logf("expected the 4096-byte block to be classified as library noise, got %+v", r.LibraryHeapNoise)
		t.Fail()
	}
}

func TestAnalyzeCarriesResidualMappingsAndDoubleFrees(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.Mappings.Insert(0x7f0000, 1<<20, "mmap (library)", time.Now())
	st.Heap.TrackFree(0xbad) // unmatched free

	r := Analyze(st, cfg)
	if len(r.LibraryMappings) != 1 {
		t.Logf("expected 1 residual mapping, got %d", len(r.LibraryMappings))
		t.Fail()
	}
	if r.DoubleFreeCount != 1 {
		t.Logf("expected double-free count 1, got %d", r.DoubleFreeCount)
		t.Fail()
	}
}
