// Package tuning applies best-effort process settings that reduce timing
// jitter: real-time scheduling for the calling thread and locked memory.
//
// Both are privileged. A failure is reported, never fatal.
package tuning

import (
	"errors"
	"log/slog"
)

// Status is the outcome of one tuning step.
type Status int

const (
	// Unavailable means the step was not attempted: missing privilege or an
	// unsupported platform.
	Unavailable Status = iota
	// Applied means the step succeeded.
	Applied
	// Failed means the step was attempted and the system refused it.
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case Unavailable:
		return "unavailable"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNotPrivileged = errors.New("tuning: requires root privileges")
	ErrUnsupported   = errors.New("tuning: not supported on this platform")
)

// Report holds the outcome of each step and the error behind any step that
// was not applied.
type Report struct {
	Scheduling    Status
	SchedulingErr error
	MemoryLock    Status
	MemoryLockErr error
}

// Applied reports whether every step succeeded.
func (r Report) Applied() bool {
	return r.Scheduling == Applied && r.MemoryLock == Applied
}

// Log writes the report the way the runner surfaces environment warnings.
func (r Report) Log(logger *slog.Logger) {
	if r.Scheduling == Applied {
		logger.Info("Scheduling policy changed to real-time class with max priority")
	} else {
		logger.Warn("Real-time scheduling not applied", "status", r.Scheduling.String(), "error", r.SchedulingErr)
	}
	if r.MemoryLock == Applied {
		logger.Info("All process pages locked in memory")
	} else {
		logger.Warn("Memory locking not applied", "status", r.MemoryLock.String(), "error", r.MemoryLockErr)
	}
}

// Tuner performs the tuning steps.
type Tuner interface {
	Tune() Report
}

// Skip is a Tuner that attempts nothing.
type Skip struct{}

func (Skip) Tune() Report {
	return Report{Scheduling: Unavailable, MemoryLock: Unavailable}
}
