//go:build !linux

package tuning

// Realtime is a no-op outside Linux.
type Realtime struct{}

// NewRealtime returns the platform tuner.
func NewRealtime() *Realtime {
	return &Realtime{}
}

func (*Realtime) Tune() Report {
	return Report{
		Scheduling:    Unavailable,
		SchedulingErr: ErrUnsupported,
		MemoryLock:    Unavailable,
		MemoryLockErr: ErrUnsupported,
	}
}
