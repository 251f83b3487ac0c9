//go:build linux && amd64

package syscalltab

import "syscall"

// AMD64Registers adapts syscall.PtraceRegs to RegisterView for the
// x86_64 Linux calling convention: syscall number in orig_rax, arguments
// in rdi, rsi, rdx, r10, r8, r9, return value in rax.
type AMD64Registers struct {
	Regs *syscall.PtraceRegs
}

// NewRegisterView wraps regs captured via syscall.PtraceGetRegs.
func NewRegisterView(regs *syscall.PtraceRegs) RegisterView {
	return AMD64Registers{Regs: regs}
}

func (r AMD64Registers) SyscallNumber() int64 {
	return int64(r.Regs.Orig_rax)
}

func (r AMD64Registers) ReturnValue() int64 {
	return int64(r.Regs.Rax)
}

func (r AMD64Registers) Arg(n int) uint64 {
	switch n {
	case 0:
		return r.Regs.Rdi
	case 1:
		return r.Regs.Rsi
	case 2:
		return r.Regs.Rdx
	case 3:
		return r.Regs.R10
	case 4:
		return r.Regs.R8
	case 5:
		return r.Regs.R9
	default:
		return 0
	}
}

func (r AMD64Registers) SetReturnValue(v int64) {
	r.Regs.Rax = uint64(v)
}
