package main

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tscbench/internal/benchmark"
	"tscbench/internal/clock"
	"tscbench/internal/cpu"
	"tscbench/internal/workload"
)

func newCompareCmd(a *app) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Time a workload under every barrier kind",
		Long: `Runs the workload once per barrier kind, each with its own calibration, and
prints the averages side by side with the percent difference against the first
kind. Barrier kinds needing the serializing read are skipped on processors
without it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compareBarriers(cmd, threshold)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 10.0, "Percentage difference highlighted in the table")
	addWorkloadFlags(cmd)
	addSettingsFlags(cmd)
	addRunnerFlags(cmd)
	return cmd
}

func (a *app) compareBarriers(cmd *cobra.Command, threshold float64) error {
	w, err := workload.Lookup(a.cfg.Workload)
	if err != nil {
		return err
	}

	probe := cpu.NewHardwareProbe()
	var barriers []clock.Barrier
	for _, b := range clock.Barriers() {
		if b == clock.SerializingRead && !probe.SerializingReadSupported() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: serializing read not supported\n", b)
			continue
		}
		barriers = append(barriers, b)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	opts, err := a.runnerOptions()
	if err != nil {
		return err
	}
	opts = append(opts, benchmark.WithProbe(probe))

	reports, err := benchmark.RunAcross(barriers, w.New(), a.cfg.Settings(), opts...)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No barrier kinds available.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Barrier comparison: "+w.Name))
	printComparison(cmd.OutOrStdout(), benchmark.Compare(reports[0], reports), threshold)
	return nil
}

func printComparison(out io.Writer, comps []benchmark.Comparison, threshold float64) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BARRIER\tAVERAGE\tOVERHEAD\tNET\tDIFF %\tSTATUS")
	for i, c := range comps {
		status := "BASE"
		if i > 0 {
			status = "SAME"
			if c.AverageDiff > threshold {
				status = "SLOWER"
			} else if c.AverageDiff < -threshold {
				status = "FASTER"
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%+.2f%%\t%s\n",
			c.Barrier, c.Curr.Result.Average, c.Curr.Result.Overhead, c.Curr.Result.Net(), c.AverageDiff, status)
	}
	w.Flush()
}
