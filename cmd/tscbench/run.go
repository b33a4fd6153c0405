package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"tscbench/internal/workload"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Time a built-in workload",
		Long: `Initializes the runner (real-time tuning and overhead calibration), then
brackets the workload until the requested number of valid samples is collected
and prints their average, the calibrated overhead and the difference.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWorkload(cmd)
		},
	}
	addWorkloadFlags(cmd)
	addSettingsFlags(cmd)
	addRunnerFlags(cmd)
	return cmd
}

func (a *app) runWorkload(cmd *cobra.Command) error {
	w, err := workload.Lookup(a.cfg.Workload)
	if err != nil {
		return err
	}

	// Real-time scheduling applies per thread; keep this goroutine on it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	runner, err := a.newRunner()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), runner)

	report, err := runner.Initialize()
	if err != nil {
		return err
	}

	settings := a.cfg.Settings()
	res, err := runner.Run(w.New(), settings)
	if err != nil {
		return fmt.Errorf("run %s: %w", w.Name, err)
	}

	printReport(cmd.OutOrStdout(), "Results: "+w.Name, []field{
		{"Barrier", runner.Barrier().String()},
		{"Migration check", fmt.Sprintf("%t", runner.MigrationCheck())},
		{"Samples", fmt.Sprintf("%d (warmup %d, core %d)", settings.SampleCount, settings.WarmupCount, settings.TargetCore)},
		{"Real-time", fmt.Sprintf("scheduling %s, memory lock %s", report.Scheduling, report.MemoryLock)},
		{"Execution time", ticks(uint64(res.Average))},
		{"Overhead", ticks(uint64(res.Overhead))},
		{"Net time", ticks(uint64(res.Net()))},
	})
	return nil
}

func addWorkloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("workload", "w", "arithmetic", "Built-in workload to time (see 'tscbench workloads')")
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("samples", "n", 100, "Number of valid samples to average")
	cmd.Flags().Int("core", 0, "Core to pin the measuring thread to")
	cmd.Flags().Int("warmup", 0, "Untimed iterations before sampling")
	cmd.Flags().Int("max-attempts", 0, "Give up after this many brackets (0 = retry until done)")
}

func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("barrier", "b", "single-serialize", "Barrier kind: single-serialize, lfence, mfence, rdtscp, double-serialize")
	cmd.Flags().Bool("migration-check", false, "Discard samples that start and end on different cores")
	cmd.Flags().Int("calibration-cycles", 100, "Valid observations per overhead search")
	cmd.Flags().Int("stabilized-threshold", 0, "Stop an overhead search after this many non-improving observations (0 = off)")
	cmd.Flags().Int("calibration-attempts", 0, "Give up calibration after this many brackets (0 = unbounded)")
	cmd.Flags().Bool("tune", true, "Try real-time scheduling and memory locking (needs root)")
}
