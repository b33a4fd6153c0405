//go:build amd64

package cpu

import (
	kcpuid "github.com/klauspost/cpuid/v2"
	tcpu "github.com/templexxx/cpu"
)

// cpuidRaw executes CPUID with the given leaf and subleaf.
// Implemented in cpuid_amd64.s.
func cpuidRaw(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

const (
	leafFeatures = 0x1
	bitTSC       = 1 << 4 // leaf 1, EDX
)

// counterBit reads the plain TSC flag, which neither feature library exposes.
func counterBit() bool {
	maxLeaf, _, _, _ := cpuidRaw(0, 0)
	if maxLeaf < leafFeatures {
		return false
	}
	_, _, _, edx := cpuidRaw(leafFeatures, 0)
	return edx&bitTSC != 0
}

func detect() *HardwareProbe {
	return &HardwareProbe{
		counter:          counterBit(),
		serializingRead:  kcpuid.CPU.Supports(kcpuid.RDTSCP),
		invariantCounter: tcpu.X86.HasInvariantTSC,
	}
}
