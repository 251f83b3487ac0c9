// Package config loads the heuristic thresholds and runtime paths oswatch
// uses to tell real user-code activity apart from benign runtime and
// library noise. These thresholds are classification policy, not
// correctness, so they're exposed as configuration rather than baked-in
// constants; this package is that configuration surface.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const (
	// AppName is used to namespace the XDG config/cache directories.
	AppName = "oswatch"

	// ConfigFileName is the name of the TOML file read from the XDG config
	// directory when no -c/--config flag is given.
	ConfigFileName = "oswatch.toml"

	// NotifyFDEnv is the environment variable the supervisor uses to tell
	// the interceptor which fd to write ALLOC/FREE events to.
	NotifyFDEnv = "OSWATCH_NOTIFY_FD"

	// PreloadEnv is the dynamic loader's pre-load injection variable.
	PreloadEnv = "LD_PRELOAD"

	// defaultInterceptorPath is where the build of interceptor/ is expected
	// to land relative to the working directory, matching the original
	// project's ./liboswatch_malloc.so convention.
	defaultInterceptorPath = "./liboswatch_interceptor.so"

	defaultMmapTrackingBytes = 64 * 1024
)

// Thresholds holds every size-based heuristic the kernel-layer tracker and
// the leak analyzer use to separate "library/system noise" from
// user-attributable activity.
type Thresholds struct {
	// MmapTrackingBytes is the minimum mmap/munmap region size the mapping
	// tracker will record. Below this, regions are assumed to be allocator
	// or runtime housekeeping and are left to the user-level tracker.
	MmapTrackingBytes uint64 `toml:"mmap_tracking_bytes"`
	// StdioBufferSizes lists malloc block sizes that are classified as
	// library/stdio buffers rather than user leaks.
	StdioBufferSizes []uint64 `toml:"stdio_buffer_sizes"`
}

// Config is the full set of tunables oswatch reads at startup.
type Config struct {
	Thresholds Thresholds `toml:"thresholds"`
	// InterceptorLibraryPath is the shared object injected into the target
	// via LD_PRELOAD to intercept malloc/free/calloc/realloc.
	InterceptorLibraryPath string `toml:"interceptor_library_path"`
}

// Default returns the configuration oswatch uses when no config file is
// present or no override is requested.
func Default() Config {
	return Config{
		Thresholds: Thresholds{
			MmapTrackingBytes: defaultMmapTrackingBytes,
			StdioBufferSizes:  []uint64{1024, 4096, 8192},
		},
		InterceptorLibraryPath: defaultInterceptorPath,
	}
}

// IsStdioSize reports whether size matches one of the configured
// library/stdio buffer sizes.
func (t Thresholds) IsStdioSize(size uint64) bool {
	for _, s := range t.StdioBufferSizes {
		if s == size {
			return true
		}
	}
	return false
}

// DefaultPath returns the location oswatch looks for a config file when
// none is specified explicitly: $XDG_CONFIG_HOME/oswatch/oswatch.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads the TOML config file at path, overlaying it onto Default(). If
// path does not exist, Default() is returned without error -- an absent
// config file is the common case, not a failure.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
