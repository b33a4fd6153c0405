//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxCores is the capacity of a CPU mask (CPU_SETSIZE).
const maxCores = 1024

// SchedPinner pins via sched_setaffinity(2) on the calling thread.
type SchedPinner struct{}

// NewPinner returns the platform pinner.
func NewPinner() Pinner {
	return SchedPinner{}
}

func (SchedPinner) Pin(core int) (func(), error) {
	if core < 0 || core >= maxCores {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCore, core)
	}

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, fmt.Errorf("read current affinity: %w", err)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("pin to core %d: %w", core, err)
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
	}, nil
}
