package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"tscbench/internal/calibration"
	"tscbench/internal/clock"
)

func newCalibrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure the overhead of the timestamp bracket",
		Long: `Measures the minimum latency of an empty bracket and of one OS clock read,
with both the plain and the stabilized minimum search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.calibrate(cmd)
		},
	}
	addRunnerFlags(cmd)
	return cmd
}

func (a *app) calibrate(cmd *cobra.Command) error {
	// The runner performs the capability checks for the configured barrier.
	runner, err := a.newRunner()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), runner)

	src, err := clock.New(runner.Barrier())
	if err != nil {
		return err
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cc := a.cfg.Calibration
	engine := calibration.NewEngine(clock.NewSampler(src, runner.MigrationCheck()), calibration.WithMaxAttempts(cc.MaxAttempts))

	plain, err := engine.MeasureOverhead(cc.Cycles)
	if err != nil {
		return err
	}
	threshold := cc.StabilizedThreshold
	if threshold == 0 {
		threshold = max(1, cc.Cycles*10/100)
	}
	stabilized, err := engine.MeasureStabilizedOverhead(cc.Cycles, threshold)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), "Calibration: "+runner.Barrier().String(), []field{
		{"Cycles", fmt.Sprintf("%d", cc.Cycles)},
		{"Counter overhead", ticks(uint64(plain.CounterOverhead))},
		{"OS clock read", ticks(uint64(plain.OSClockOverheadDelta))},
		{"Stabilized threshold", fmt.Sprintf("%d", threshold)},
		{"Stabilized counter", ticks(uint64(stabilized.CounterOverhead))},
		{"Stabilized OS clock", ticks(uint64(stabilized.OSClockOverheadDelta))},
	})
	return nil
}
