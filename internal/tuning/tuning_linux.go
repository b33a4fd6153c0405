//go:build linux

package tuning

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Realtime switches the calling thread to SCHED_FIFO at the highest priority
// and locks current and future pages with mlockall(2).
type Realtime struct {
	// geteuid is swapped in tests.
	geteuid func() int
}

// NewRealtime returns the platform tuner.
func NewRealtime() *Realtime {
	return &Realtime{geteuid: unix.Geteuid}
}

func (t *Realtime) Tune() Report {
	if t.geteuid() != 0 {
		return Report{
			Scheduling:    Unavailable,
			SchedulingErr: ErrNotPrivileged,
			MemoryLock:    Unavailable,
			MemoryLockErr: ErrNotPrivileged,
		}
	}

	var r Report
	if err := setFIFO(); err != nil {
		r.Scheduling, r.SchedulingErr = Failed, err
	} else {
		r.Scheduling = Applied
	}

	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		r.MemoryLock, r.MemoryLockErr = Failed, fmt.Errorf("mlockall: %w", err)
	} else {
		r.MemoryLock = Applied
	}
	return r
}

func setFIFO() error {
	prio, _, errno := unix.Syscall(unix.SYS_SCHED_GET_PRIORITY_MAX, unix.SCHED_FIFO, 0, 0)
	if errno != 0 {
		return fmt.Errorf("sched_get_priority_max: %w", errno)
	}

	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(prio),
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("sched_setattr: %w", err)
	}
	return nil
}
