//go:build amd64

package clock

// Counter read sequences, implemented in counter_amd64.s. Each one is a
// single routine so nothing the compiler emits can land between the fences
// and the read. The *Rdtscp variants also return the IA32_TSC_AUX value.

//go:noescape
func cpuidRdtsc() uint64

//go:noescape
func cpuidRdtscp() (tsc, aux uint64)

//go:noescape
func lfenceRdtscCpuid() uint64

//go:noescape
func lfenceRdtscpCpuid() (tsc, aux uint64)

//go:noescape
func cpuidRdtscMfence() uint64

//go:noescape
func cpuidRdtscpMfence() (tsc, aux uint64)

//go:noescape
func rdtscpCpuid() (tsc, aux uint64)

//go:noescape
func cpuidRdtscCpuid() uint64

//go:noescape
func cpuidRdtscpCpuid() (tsc, aux uint64)
