// Package affinity pins the calling OS thread to a processor core.
package affinity

import (
	"errors"

	psutil "github.com/shirou/gopsutil/v3/cpu"
)

var (
	// ErrInvalidCore is returned for negative or out-of-range core indices.
	ErrInvalidCore = errors.New("affinity: invalid core index")
	// ErrUnsupported is returned where the platform cannot pin threads.
	ErrUnsupported = errors.New("affinity: thread pinning not supported on this platform")
)

// Pinner binds the calling thread to one core. Callers must hold the thread
// with runtime.LockOSThread for the pin to follow the goroutine.
//
// On success restore puts the thread's previous affinity back.
type Pinner interface {
	Pin(core int) (restore func(), err error)
}

// LogicalCores returns the number of logical processors, never less than 1.
func LogicalCores() int {
	n, err := psutil.Counts(true)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
