// Package supervisor launches a target program under ptrace, drives the
// syscall-stop trace loop, and drains the interceptor's notify pipe as
// the child runs.
package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/arctir/oswatch/clock"
	"github.com/arctir/oswatch/config"
	"github.com/arctir/oswatch/mapping"
	"github.com/arctir/oswatch/procutil"
	"github.com/arctir/oswatch/stats"
	"github.com/arctir/oswatch/syscalltab"
	"github.com/arctir/oswatch/tracelog"
)

// Result is what a completed Launch hands back to the caller.
type Result struct {
	Stats      *stats.ProcessStats
	ExitStatus int
	ExitSignal int
}

// Launch starts program with args under ptrace, traces it to completion,
// and returns the accumulated ProcessStats. The trace loop and the
// ptrace calls it issues must run on a single, locked OS thread -- ptrace
// attaches the calling thread as the tracer, and every subsequent ptrace
// call for that tracee must come from that same thread.
// traceLog is an optional raw event log; passing nil disables it
// entirely (tracelog.Writer's methods are nil-safe no-ops).
func Launch(program string, args []string, cfg config.Config, verbose bool, log *logrus.Logger, traceLog *tracelog.Writer) (*Result, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	notifyR, notifyW, err := newNotifyPipe()
	if err != nil {
		return nil, fmt.Errorf("creating notify pipe: %w", err)
	}
	defer notifyR.Close()

	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", config.NotifyFDEnv, 3),
		fmt.Sprintf("%s=%s", config.PreloadEnv, cfg.InterceptorLibraryPath),
	)
	cmd.ExtraFiles = []*os.File{notifyW}
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	st := stats.New(program, args, cfg, verbose)
	st.StartedAt = clock.Now()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting target program: %w", err)
	}
	// The child's copy of the write end keeps the pipe open; the parent's
	// copy must be closed or a read on the parent side would never see EOF.
	notifyW.Close()

	pid := cmd.Process.Pid
	st.PID = pid

	var wstatus syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &wstatus, 0, nil); err != nil {
		return nil, fmt.Errorf("waiting for initial trace stop: %w", err)
	}

	if err := syscall.PtraceSetOptions(pid, unix.PTRACE_O_TRACESYSGOOD|unix.PTRACE_O_EXITKILL); err != nil {
		return nil, fmt.Errorf("setting ptrace options: %w", err)
	}
	st.ProgramStarted = true

	loopErr := traceLoop(pid, st, notifyR, log, traceLog)
	if loopErr != nil {
		log.WithError(loopErr).Warn("trace loop ended with an error")
	}

	// Drain anything the interceptor wrote between the last in-loop drain
	// and the child's exit.
	_ = st.Heap.DrainEvents(notifyR)

	st.FinishedAt = clock.Now()

	// After a failed trace primitive the partial statistics are handed back
	// as an independent snapshot rather than the supervisor's own instance.
	out := st
	if loopErr != nil {
		out = st.Snapshot()
	}
	return &Result{Stats: out, ExitStatus: st.ExitStatus, ExitSignal: st.ExitSignal}, nil
}

// newNotifyPipe creates the pipe the interceptor writes ALLOC/FREE lines
// into. The read end is non-blocking so draining it never stalls the
// trace loop waiting on a child that may never write again.
func newNotifyPipe() (r, w *os.File, err error) {
	var p [2]int
	if err := unix.Pipe2(p[:], 0); err != nil {
		return nil, nil, err
	}
	r = os.NewFile(uintptr(p[0]), "oswatch-notify-r")
	w = os.NewFile(uintptr(p[1]), "oswatch-notify-w")
	// O_NONBLOCK is set only after os.NewFile: a descriptor that is already
	// non-blocking is registered with the runtime poller, whose Read waits
	// for data instead of returning EAGAIN.
	if err := unix.SetNonblock(p[0], true); err != nil {
		r.Close()
		w.Close()
		return nil, nil, err
	}
	return r, w, nil
}

// traceLoop is the syscall-stop loop: resume to the next syscall
// boundary, classify the stop, and alternate between entry and exit
// handling for each syscall pair.
func traceLoop(pid int, st *stats.ProcessStats, notifyR *os.File, log *logrus.Logger, traceLog *tracelog.Writer) error {
	inSyscall := false
	var entryAt = clock.Now()
	var entryRegs syscall.PtraceRegs
	brk := &brkTracker{}
	resumeSig := 0

	for {
		_ = st.Heap.DrainEvents(notifyR)

		if err := syscall.PtraceSyscall(pid, resumeSig); err != nil {
			return fmt.Errorf("ptrace syscall: %w", err)
		}
		resumeSig = 0

		var wstatus syscall.WaitStatus
		if _, err := syscall.Wait4(pid, &wstatus, 0, nil); err != nil {
			return fmt.Errorf("wait4: %w", err)
		}

		if wstatus.Exited() {
			st.ExitStatus = wstatus.ExitStatus()
			if verboseLog(log) {
				log.Infof("target exited with code %d", st.ExitStatus)
			}
			return nil
		}
		if wstatus.Signaled() {
			st.ExitSignal = int(wstatus.Signal())
			st.ExitStatus = -1
			if verboseLog(log) {
				log.Infof("target terminated by signal %d", st.ExitSignal)
			}
			return nil
		}

		if wstatus.Stopped() {
			sig := wstatus.StopSignal()
			syscallTrap := sig == syscall.SIGTRAP|0x80
			if sig != syscall.SIGTRAP && !syscallTrap {
				// Non-syscall-stop signal: re-inject it on the next resume and
				// keep going instead of swallowing any stop signal that isn't
				// SIGTRAP.
				resumeSig = int(sig)
				continue
			}
			if int(wstatus)>>8 == int(unix.SIGTRAP|(unix.PTRACE_EVENT_EXIT<<8)) {
				return nil
			}
		} else {
			continue
		}

		var regs syscall.PtraceRegs
		if err := syscall.PtraceGetRegs(pid, &regs); err != nil {
			return fmt.Errorf("getregs: %w", err)
		}

		view := syscalltab.NewRegisterView(&regs)

		if !inSyscall {
			entryAt = clock.Now()
			entryRegs = regs
			handleEntry(pid, view, st, log)
			_ = traceLog.WriteEvent(fmt.Sprintf("pid=%d enter %s", pid, syscalltab.Name(view.SyscallNumber())))
			inSyscall = true
		} else {
			duration := clock.DiffMillis(entryAt, clock.Now())
			entryView := syscalltab.NewRegisterView(&entryRegs)
			handleExit(pid, view, entryView, st, duration, brk)
			_ = traceLog.WriteEvent(fmt.Sprintf("pid=%d exit %s ret=%d", pid, syscalltab.Name(view.SyscallNumber()), view.ReturnValue()))
			inSyscall = false
		}
	}
}

func verboseLog(log *logrus.Logger) bool {
	return log != nil && log.IsLevelEnabled(logrus.DebugLevel)
}

// handleEntry records per-syscall statistics at syscall entry and, in
// verbose mode, logs the decoded syscall name with its first three
// argument registers in hex.
func handleEntry(pid int, view syscalltab.RegisterView, st *stats.ProcessStats, log *logrus.Logger) {
	num := view.SyscallNumber()
	st.RecordSyscall(num)

	if verboseLog(log) {
		log.WithFields(logrus.Fields{
			"pid":     pid,
			"syscall": syscalltab.Name(num),
		}).Debugf("enter %s(0x%x, 0x%x, 0x%x)", syscalltab.Name(num), view.Arg(0), view.Arg(1), view.Arg(2))
	}
}

// brkTracker holds the running brk cursor for a single traced process.
// Scoping it to one traceLoop call keeps successive Launch calls in the
// same oswatch process from bleeding heap-growth state into each other.
type brkTracker struct {
	seen    bool
	initial uintptr
	last    uintptr
}

// handleExit applies the side effects of a completed syscall: mmap/munmap
// region tracking, brk-based heap growth tracking, and file descriptor
// lifecycle tracking. This mirrors handle_syscall_exit.
func handleExit(pid int, exitView, entryView syscalltab.RegisterView, st *stats.ProcessStats, durationMs float64, brk *brkTracker) {
	st.TotalSyscallTime += durationMs

	num := exitView.SyscallNumber()
	ret := exitView.ReturnValue()

	switch num {
	case syscalltab.SysMmap:
		if ret > 0 {
			size := entryView.Arg(1)
			st.Mappings.Insert(uintptr(ret), size, mapping.ClassMmapLibrary, clock.Now())
		}
	case syscalltab.SysMunmap:
		if ret == 0 {
			addr := uintptr(entryView.Arg(0))
			size := entryView.Arg(1)
			st.Mappings.Remove(addr, size)
		}
	case syscalltab.SysBrk:
		if ret != -1 {
			newBrk := uintptr(ret)
			if !brk.seen {
				brk.initial = newBrk
				brk.last = newBrk
				brk.seen = true
			} else if newBrk != brk.last {
				if newBrk > brk.last {
					st.HeapAllocated += uint64(newBrk - brk.last)
				} else {
					st.HeapFreed += uint64(brk.last - newBrk)
				}
				brk.last = newBrk
			}
		}
	case syscalltab.SysOpen, syscalltab.SysOpenat:
		if ret >= 0 {
			fd := int(ret)
			name, err := procutil.ResolveFDPath(pid, fd)
			if err != nil {
				name = ""
			}
			st.Files.Open(fd, name, int(entryView.Arg(1)), clock.Now())
		}
	case syscalltab.SysClose:
		if ret == 0 {
			st.Files.Close(int(entryView.Arg(0)))
		}
	}
}
