package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("hack", "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("expected no error when config file is absent, got: %s", err)
	}
	if cfg.Thresholds.MmapTrackingBytes != defaultMmapTrackingBytes {
		t.Logf("expected default mmap threshold %d, got %d", defaultMmapTrackingBytes, cfg.Thresholds.MmapTrackingBytes)
		t.Fail()
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "oswatch.toml")
	body := `interceptor_library_path = "/opt/oswatch/libinterceptor.so"

[thresholds]
mmap_tracking_bytes = 131072
stdio_buffer_sizes = [1024, 2048]
`
	if err := os.WriteFile(fp, []byte(body), 0644); err != nil {
		t.Fatalf("failed writing test config: %s", err)
	}

	cfg, err := Load(fp)
	if err != nil {
		t.Fatalf("unexpected error loading config: %s", err)
	}
	if cfg.Thresholds.MmapTrackingBytes != 131072 {
		t.Logf("expected overridden mmap threshold 131072, got %d", cfg.Thresholds.MmapTrackingBytes)
		t.Fail()
	}
	if cfg.InterceptorLibraryPath != "/opt/oswatch/libinterceptor.so" {
		t.Logf("expected overridden interceptor path, got %q", cfg.InterceptorLibraryPath)
		t.Fail()
	}
}

func TestIsStdioSize(t *testing.T) {
	th := Default().Thresholds
	if !th.IsStdioSize(4096) {
		t.Logf("expected 4096 to be classified as a stdio buffer size")
		t.Fail()
	}
	if th.IsStdioSize(12345) {
		t.Logf("expected 12345 to not be classified as a stdio buffer size")
		t.Fail()
	}
}
