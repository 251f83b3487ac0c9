package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arctir/oswatch/analyzer"
	"github.com/arctir/oswatch/config"
	"github.com/arctir/oswatch/stats"
)

func TestRenderLeakFree(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.PID = 4242
	r := analyzer.Analyze(st, cfg)

	var buf bytes.Buffer
	Render(&buf, st, r)
	out := buf.String()

	if !strings.Contains(out, "PROCESS STATISTICS") {
		t.Logf("expected report to contain a process statistics banner, got:\n%s", out)
		t.Fail()
	}
	if !strings.Contains(out, "no leaks found") {
		t.Logf("expected a leak-free run to report no leaks found, got:\n%s", out)
		t.Fail()
	}
}

func TestRenderHeapGrowthIsInformationalNotALeak(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.HeapAllocated = 4096
	st.HeapFreed = 1024
	r := analyzer.Analyze(st, cfg)

	var buf bytes.Buffer
	Render(&buf, st, r)
	out := buf.String()

	if !strings.Contains(out, "HEAP SIZE TRACKING") {
		t.Logf("expected unreturned heap growth to be reported as heap size tracking, got:\n%s", out)
		t.Fail()
	}
	if strings.Contains(out, "LEAK DETECTED") {
		t.Logf("expected heap growth alone not to be reported as a leak finding, got:\n%s", out)
		t.Fail()
	}
	if !strings.Contains(out, "no leaks found") {
		t.Logf("expected the trailer to still report no leaks found, got:\n%s", out)
		t.Fail()
	}
}

func TestRenderReportsLeaks(t *testing.T) {
	cfg := config.Default()
	st := stats.New("/bin/true", nil, cfg, false)
	st.Heap.TrackAlloc(0x4000, 24)
	r := analyzer.Analyze(st, cfg)

	var buf bytes.Buffer
	Render(&buf, st, r)
	out := buf.String()

	if !strings.Contains(out, "USER HEAP LEAKS") {
		t.Logf("expected report to call out user heap leaks, got:\n%s", out)
		t.Fail()
	}
	if !strings.Contains(out, "0x4000") {
		t.Logf("expected report to list the leaked block's address, got:\n%s", out)
		t.Fail()
	}
	if !strings.Contains(out, "leaks found") {
		t.Logf("expected the trailer to report leaks found, got:\n%s", out)
		t.Fail()
	}
}
