package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/coresim/sim"
	"github.com/inference-sim/coresim/sim/sweep"
	"github.com/inference-sim/coresim/sim/trace"
)

var (
	configPath string // Parameter record: file path, or "-" for stdin
	seed       int64  // Seed for the workload samplers
	logLevel   string // Log verbosity level
	outputPath string // Where to write the result JSON (stdout if empty)
	traceLevel string // Decision trace level
	sweepPath  string // Sweep description file
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "coresim",
	Short: "Discrete-event simulator for a multi-core request-processing node",
}

// runCmd executes one simulation from a parameter record
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its steady-state statistics",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, decisions)", traceLevel)
		}
		startTime := time.Now()
		if _, err := runSimulation(cmd.InOrStdin(), configPath, seed, trace.TraceLevel(traceLevel), outputPath); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// sweepCmd runs replicated simulations across one parameter
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep one parameter and report statistics with confidence intervals",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if sweepPath == "" {
			logrus.Fatalf("--sweep is required")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := runSweep(ctx, cmd.InOrStdin(), configPath, sweepPath, outputPath); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		logrus.Info("Sweep complete.")
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runSimulation loads the parameter record, runs it to termination and saves the
// output record.
func runSimulation(stdin io.Reader, cfgPath string, seed int64, level trace.TraceLevel, output string) (*sim.MetricsOutput, error) {
	cfg, err := loadConfig(cfgPath, stdin)
	if err != nil {
		return nil, err
	}
	s, err := sim.NewSimulator(cfg, seed)
	if err != nil {
		return nil, err
	}
	s.EnableTrace(trace.TraceConfig{Level: level})

	out, err := s.Run()
	if err != nil {
		return nil, err
	}
	if out.Termination == sim.TerminationIterationCap {
		logrus.Warnf("Results cover %g time units only; raise max_iters for longer runs", out.SimTime)
	}
	if s.Trace != nil {
		logTraceSummary(trace.Summarize(s.Trace))
	}
	if err := out.SaveResults(output); err != nil {
		return nil, err
	}
	return out, nil
}

func logTraceSummary(ts *trace.TraceSummary) {
	logrus.Infof("=== Trace Summary ===")
	logrus.Infof("Admission decisions: %d (drop fraction %.4f)", ts.TotalDecisions, ts.DropFraction)
	decisions := make([]string, 0, len(ts.Decisions))
	for d := range ts.Decisions {
		decisions = append(decisions, string(d))
	}
	sort.Strings(decisions)
	for _, d := range decisions {
		logrus.Infof("  %-12s %d", d, ts.Decisions[trace.AdmissionDecision(d)])
	}
	for _, c := range []trace.FollowUpCause{trace.FollowUpThink, trace.FollowUpTimeoutRetry, trace.FollowUpDropRetry} {
		logrus.Infof("Follow-ups (%s): %d", c, ts.FollowUps[c])
	}
	logrus.Infof("Mean think gap: %.4f", ts.MeanThinkGap)
}

// runSweep loads the base parameter record and the sweep description, runs the
// sweep and saves the result.
func runSweep(ctx context.Context, stdin io.Reader, cfgPath, specPath, output string) (*sweep.Result, error) {
	if cfgPath == "-" && specPath == "-" {
		return nil, fmt.Errorf("only one of --config and --sweep can read stdin")
	}
	base, err := loadConfig(cfgPath, stdin)
	if err != nil {
		return nil, err
	}
	spec, err := loadSweepSpec(specPath, stdin)
	if err != nil {
		return nil, err
	}
	res, err := sweep.Run(ctx, base, spec)
	if err != nil {
		return nil, err
	}
	if err := res.SaveResults(output); err != nil {
		return nil, err
	}
	return res, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "-", "Parameter record (YAML or JSON file; - reads stdin)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", "", "Write the result JSON to this file instead of stdout")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the workload samplers")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")

	sweepCmd.Flags().StringVar(&sweepPath, "sweep", "", "Sweep description (YAML file; - reads stdin)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
}
