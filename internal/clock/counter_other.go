//go:build !amd64

package clock

import (
	_ "unsafe" // for go:linkname
)

// Without a TSC every sequence collapses to a monotonic clock read in
// nanoseconds. Fences are meaningless here and no core id is available, so
// aux is always zero.

//go:linkname nanotime runtime.nanotime
func nanotime() int64

func read() uint64 { return uint64(nanotime()) }

func cpuidRdtsc() uint64 { return read() }
func cpuidRdtscp() (tsc, aux uint64) { return read(), 0 }
func lfenceRdtscCpuid() uint64 { return read() }
func lfenceRdtscpCpuid() (tsc, aux uint64) { return read(), 0 }
func cpuidRdtscMfence() uint64 { return read() }
func cpuidRdtscpMfence() (tsc, aux uint64) { return read(), 0 }
func rdtscpCpuid() (tsc, aux uint64) { return read(), 0 }
func cpuidRdtscCpuid() uint64 { return read() }
func cpuidRdtscpCpuid() (tsc, aux uint64) { return read(), 0 }
