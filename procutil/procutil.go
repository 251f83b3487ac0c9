// Package procutil resolves facts about a traced process out of procfs:
// a file descriptor's open path and the target binary's exe path, read
// from /proc/<pid>/fd/<n> and /proc/<pid>/exe respectively.
package procutil

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultProcDir = "/proc"
	exeDir         = "exe"
	fdDir          = "fd"
)

// ResolveExePath returns the resolved target of /proc/<pid>/exe, the
// absolute path to the binary a traced process is running.
func ResolveExePath(pid int) (string, error) {
	return os.Readlink(filepath.Join(defaultProcDir, strconv.Itoa(pid), exeDir))
}

// ResolveFDPath returns the resolved target of /proc/<pid>/fd/<fd>: the
// file, socket, or pipe a descriptor refers to at the moment of the call.
// Descriptors are transient -- by the time the supervisor gets around to
// resolving one, the traced process may have already closed it, in which
// case the symlink is gone and an error is returned.
func ResolveFDPath(pid, fd int) (string, error) {
	return os.Readlink(filepath.Join(defaultProcDir, strconv.Itoa(pid), fdDir, strconv.Itoa(fd)))
}
