package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tscbench/internal/affinity"
	"tscbench/internal/clock"
	"tscbench/internal/cpu"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show timestamp counter capabilities and CPU topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			hw := cpu.NewHardwareProbe()

			printReport(out, "CPU Information", []field{
				{"TSC supported", yesNo(hw.CounterSupported())},
				{"RDTSCP supported", yesNo(hw.SerializingReadSupported())},
				{"Invariant TSC", yesNo(hw.InvariantCounterSupported())},
				{"Logical cores", fmt.Sprintf("%d", affinity.LogicalCores())},
			})

			d := cpu.Describe()
			fmt.Fprintln(out, sectionStyle.Render("Processor"))
			fmt.Fprintln(out, boxStyle.Render(renderFields(processorFields(d))))

			// The kernel's view can differ from CPUID under virtualization.
			flags, err := cpu.NewFlagsProbe()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: cpu flags unavailable: "+err.Error()))
				return nil
			}
			fmt.Fprintln(out, sectionStyle.Render("Kernel flags"))
			fmt.Fprintln(out, boxStyle.Render(renderFields([]field{
				{"tsc", yesNo(flags.CounterSupported())},
				{"rdtscp", yesNo(flags.SerializingReadSupported())},
				{"constant_tsc+nonstop_tsc", yesNo(flags.InvariantCounterSupported())},
			})))

			if len(d.Features) > 0 {
				fmt.Fprintln(out, sectionStyle.Render("Features"))
				fmt.Fprintln(out, strings.Join(d.Features, " "))
			}
			return nil
		},
	}
}

func processorFields(d cpu.Description) []field {
	fields := []field{
		{"Vendor", d.Vendor},
		{"Brand", d.Brand},
		{"Model", d.Model},
		{"Family/model", fmt.Sprintf("%d/%d", d.Family, d.ModelNumber)},
		{"Cores", fmt.Sprintf("%d physical, %d threads per core, %d logical", d.PhysicalCores, d.ThreadsPerCore, d.LogicalCores)},
	}
	if d.HasTSCAux {
		chip, core := clock.SplitAux(uint64(d.TSCAux))
		fields = append(fields, field{"Current chip/core", fmt.Sprintf("%d/%d", chip, core)})
	}
	return fields
}
