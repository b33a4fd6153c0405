package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tscbench/internal/workload"
)

func newWorkloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "List built-in workloads",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, wl := range workload.All() {
				fmt.Fprintf(w, "%s\t%s\n", wl.Name, wl.Description)
			}
			w.Flush()
		},
	}
}
