// Package syscalltab provides the x86_64 Linux syscall number-to-name
// table and the architecture-specific register view the tracer uses to
// read syscall arguments and return values out of a stopped child.
package syscalltab

// MaxSyscallNum bounds the syscall counters array a stats container
// keeps. 440 covers every syscall number the lookup table below names,
// with headroom for numbers added after this table was last updated.
const MaxSyscallNum = 440

// Name returns the syscall name for num, or "unknown" if num is not one
// this table recognizes. Numbers are x86_64 Linux syscall numbers.
func Name(num int64) string {
	if name, ok := names[num]; ok {
		return name
	}
	return "unknown"
}

var names = map[int64]string{
	0: "read", 1: "write", 2: "open", 3: "close", 4: "stat", 5: "fstat",
	6: "lstat", 7: "poll", 8: "lseek", 9: "mmap", 10: "mprotect",
	11: "munmap", 12: "brk", 13: "rt_sigaction", 14: "rt_sigprocmask",
	15: "rt_sigreturn", 16: "ioctl", 17: "pread64", 18: "pwrite64",
	19: "readv", 20: "writev", 21: "access", 22: "pipe", 24: "sched_yield",
	25: "mremap", 26: "msync", 27: "mincore", 28: "madvise", 29: "shmget",
	30: "shmat", 31: "shmctl", 32: "dup", 33: "dup2", 34: "pause",
	35: "nanosleep", 37: "alarm", 38: "setitimer", 39: "getpid",
	40: "sendfile", 41: "socket", 42: "connect", 43: "accept",
	44: "sendto", 45: "recvfrom", 46: "sendmsg", 47: "recvmsg",
	48: "shutdown", 49: "bind", 50: "listen", 51: "getsockname",
	52: "getpeername", 53: "socketpair", 54: "setsockopt", 55: "getsockopt",
	56: "clone", 57: "fork", 58: "vfork", 59: "execve", 60: "exit",
	61: "wait4", 62: "kill", 63: "uname", 72: "fcntl", 73: "flock",
	74: "fsync", 75: "fdatasync", 76: "truncate", 77: "ftruncate",
	78: "getdents", 79: "getcwd", 80: "chdir", 81: "fchdir", 82: "rename",
	83: "mkdir", 84: "rmdir", 85: "creat", 86: "link", 87: "unlink",
	88: "symlink", 89: "readlink", 90: "chmod", 91: "fchmod", 92: "chown",
	93: "fchown", 96: "gettimeofday", 97: "getrlimit", 98: "getrusage",
	99: "sysinfo", 102: "getuid", 104: "getgid", 105: "setuid",
	106: "setgid", 107: "geteuid", 108: "getegid", 110: "getppid",
	111: "getpgrp", 112: "setsid", 186: "gettid", 202: "futex",
	217: "getdents64", 228: "clock_gettime", 230: "clock_nanosleep",
	231: "exit_group", 232: "epoll_wait", 233: "epoll_ctl", 234: "tgkill",
	257: "openat", 258: "mkdirat", 259: "mknodat", 260: "fchownat",
	261: "futimesat", 262: "newfstatat", 263: "unlinkat", 264: "renameat",
	265: "linkat", 266: "symlinkat", 267: "readlinkat", 268: "fchmodat",
	269: "faccessat", 281: "epoll_pwait", 318: "getrandom",
}

// Numbers named here so callers can dispatch on behavior without
// depending on syscalltab's internal table layout.
const (
	SysRead    = 0
	SysWrite   = 1
	SysOpen    = 2
	SysClose   = 3
	SysMmap    = 9
	SysMunmap  = 11
	SysBrk     = 12
	SysOpenat  = 257
)
