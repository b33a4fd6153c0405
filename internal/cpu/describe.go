package cpu

import (
	kcpuid "github.com/klauspost/cpuid/v2"
	psutil "github.com/shirou/gopsutil/v3/cpu"
)

// Description summarizes the processor for display.
type Description struct {
	Vendor         string
	Brand          string
	Model          string
	Family         int
	ModelNumber    int
	PhysicalCores  int
	ThreadsPerCore int
	LogicalCores   int
	Features       []string

	// TSCAux is the RDTSCP auxiliary value read on the calling core, valid
	// when HasTSCAux is set.
	TSCAux    uint32
	HasTSCAux bool
}

// Describe collects vendor and topology details. The model string comes from
// the operating system when available since CPUID brand strings are often
// blank under virtualization.
func Describe() Description {
	d := Description{
		Vendor:         kcpuid.CPU.VendorString,
		Brand:          kcpuid.CPU.BrandName,
		Family:         kcpuid.CPU.Family,
		ModelNumber:    kcpuid.CPU.Model,
		PhysicalCores:  kcpuid.CPU.PhysicalCores,
		ThreadsPerCore: kcpuid.CPU.ThreadsPerCore,
		LogicalCores:   kcpuid.CPU.LogicalCores,
		Features:       kcpuid.CPU.FeatureSet(),
		HasTSCAux:      kcpuid.CPU.Supports(kcpuid.RDTSCP),
	}
	if d.HasTSCAux {
		d.TSCAux = kcpuid.CPU.Ia32TscAux()
	}
	if infos, err := psutil.Info(); err == nil && len(infos) > 0 {
		d.Model = infos[0].ModelName
	}
	if d.Model == "" {
		d.Model = d.Brand
	}
	return d
}
