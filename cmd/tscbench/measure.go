package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tscbench/internal/workload"
)

func newMeasureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Bracket a workload once and print the raw elapsed ticks",
		Long: `Takes a single timestamp pair around one execution of the workload. No
warmup, filtering or overhead subtraction is applied, and nothing is calibrated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := workload.Lookup(a.cfg.Workload)
			if err != nil {
				return err
			}
			runner, err := a.newRunner()
			if err != nil {
				return err
			}
			elapsed := runner.MeasureTime(w.New())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (raw, overhead included)\n", w.Name, ticks(uint64(elapsed)))
			return nil
		},
	}
	addWorkloadFlags(cmd)
	addRunnerFlags(cmd)
	return cmd
}
