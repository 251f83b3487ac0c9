// Command oswatch launches a target program, traces every syscall it
// makes, tracks its heap allocations via an LD_PRELOAD-injected
// interceptor, and reports on file descriptor and memory leaks once the
// target exits.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arctir/oswatch/analyzer"
	"github.com/arctir/oswatch/config"
	"github.com/arctir/oswatch/report"
	"github.com/arctir/oswatch/supervisor"
	"github.com/arctir/oswatch/tracelog"
)

var (
	verbose      bool
	configPath   string
	traceLogPath string
)

var rootCmd = &cobra.Command{
	Use:   "oswatch <program> [args...]",
	Short: "Trace a program's syscalls, memory, and file descriptor usage, and report on leaks.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOswatch,
}

func init() {
	var flags *pflag.FlagSet = rootCmd.Flags()

	// SetInterspersed(false) stops pflag from scanning past the target
	// program's name for flags: everything after <program> belongs to the
	// traced program, not to oswatch, even if it looks like a flag
	// oswatch itself defines.
	flags.SetInterspersed(false)
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose tracing output")
	flags.StringVarP(&configPath, "config", "c", "", "path to an oswatch.toml config file")
	flags.StringVar(&traceLogPath, "trace-log", "", "append a raw per-syscall event log to this path")
}

func runOswatch(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	program := args[0]
	progArgs := args[1:]

	var traceLog *tracelog.Writer
	if traceLogPath != "" {
		traceLog, err = tracelog.Open(traceLogPath)
		if err != nil {
			return fmt.Errorf("opening trace log: %w", err)
		}
		defer traceLog.Close()
	}

	result, err := supervisor.Launch(program, progArgs, cfg, verbose, log, traceLog)
	if err != nil {
		return fmt.Errorf("tracing %s: %w", program, err)
	}

	rep := analyzer.Analyze(result.Stats, cfg)
	report.Render(os.Stdout, result.Stats, rep)

	// oswatch's own exit code reports only on its own failures (argument
	// errors, fork/trace failures); it does not forward the traced
	// child's exit code, and the verdict is conveyed through the report
	// text, not the process exit status.
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
