package cpu

import (
	"fmt"
	"slices"

	psutil "github.com/shirou/gopsutil/v3/cpu"
)

// FlagsProbe answers from the feature flags the operating system reports
// (/proc/cpuinfo on Linux). It reflects what the kernel exposes, which can
// differ from raw CPUID inside virtual machines.
type FlagsProbe struct {
	flags []string
}

// NewFlagsProbe reads the flags of the first reported processor.
func NewFlagsProbe() (*FlagsProbe, error) {
	infos, err := psutil.Info()
	if err != nil {
		return nil, fmt.Errorf("read cpu info: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("read cpu info: no processors reported")
	}
	return &FlagsProbe{flags: infos[0].Flags}, nil
}

func (p *FlagsProbe) has(flag string) bool {
	return slices.Contains(p.flags, flag)
}

func (p *FlagsProbe) CounterSupported() bool { return p.has("tsc") }

func (p *FlagsProbe) SerializingReadSupported() bool { return p.has("rdtscp") }

// InvariantCounterSupported needs both halves Linux splits invariance into.
func (p *FlagsProbe) InvariantCounterSupported() bool {
	return p.has("constant_tsc") && p.has("nonstop_tsc")
}
