package syscalltab

// RegisterView isolates the ptrace register layout so the rest of the
// tracer never touches syscall.PtraceRegs fields directly. The dispatch
// logic in package supervisor is written entirely in terms of this
// interface; only the per-architecture files below know which register
// holds what.
type RegisterView interface {
	// SyscallNumber returns the syscall number captured at entry
	// (orig_rax on x86_64). Returned as int64, not uint64, since syscall
	// numbers are always small non-negative values and entry/exit
	// comparisons against syscalltab's Sys* constants are more natural
	// signed.
	SyscallNumber() int64
	// ReturnValue returns the syscall's return value, valid at exit
	// (rax on x86_64), reinterpreting the register's bit pattern as
	// signed. This mirrors the x86_64 kernel convention directly: success
	// values are small positive numbers or pointers, failures are
	// -errno, and Go's int64 conversion of the underlying unsigned
	// register preserves both without a separate maxErrnoValue check.
	ReturnValue() int64
	// Arg returns the raw value of the n'th syscall argument (0-indexed),
	// per the platform calling convention.
	Arg(n int) uint64
	// SetReturnValue overwrites the syscall's return value before the
	// tracer resumes the child. oswatch never calls this in its own
	// trace loop (it observes rather than rewrites syscalls), but the
	// register view exposes it for parity with what a real ptrace
	// register snapshot supports.
	SetReturnValue(v int64)
}
