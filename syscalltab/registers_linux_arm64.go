//go:build linux && arm64

package syscalltab

import "syscall"

// AMD64Registers is named for parity with the amd64 build; on arm64 it
// wraps the aarch64 PtraceRegs layout instead (syscall number in Regs[8],
// arguments in Regs[0..5], return value in Regs[0] at exit). The syscall
// table in syscalltab.go and the Sys* constants are x86_64-numbered, and
// the supervisor's counters, names and per-syscall side effects use them
// on every architecture, so on arm64 those are keyed by the wrong numbers;
// only entry/exit timing and raw register capture are correct there.
type AMD64Registers struct {
	Regs *syscall.PtraceRegs
}

// NewRegisterView wraps regs captured via syscall.PtraceGetRegs.
func NewRegisterView(regs *syscall.PtraceRegs) RegisterView {
	return AMD64Registers{Regs: regs}
}

func (r AMD64Registers) SyscallNumber() int64 {
	return int64(r.Regs.Regs[8])
}

func (r AMD64Registers) ReturnValue() int64 {
	return int64(r.Regs.Regs[0])
}

func (r AMD64Registers) Arg(n int) uint64 {
	if n < 0 || n > 5 {
		return 0
	}
	return r.Regs.Regs[n]
}

func (r AMD64Registers) SetReturnValue(v int64) {
	r.Regs.Regs[0] = uint64(v)
}
