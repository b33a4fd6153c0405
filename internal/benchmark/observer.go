package benchmark

import "tscbench/internal/clock"

// DiscardReason says why a sample was not counted.
type DiscardReason int

const (
	// NonMonotonic: the end timestamp was not after the start.
	NonMonotonic DiscardReason = iota
	// BelowOverhead: the elapsed time did not exceed the calibrated overhead.
	BelowOverhead
	// Migrated: the start and end reads ran on different cores.
	Migrated
)

func (r DiscardReason) String() string {
	switch r {
	case NonMonotonic:
		return "non_monotonic"
	case BelowOverhead:
		return "below_overhead"
	case Migrated:
		return "migrated"
	}
	return "unknown"
}

// DiscardReasons lists every reason, in declaration order.
func DiscardReasons() []DiscardReason {
	return []DiscardReason{NonMonotonic, BelowOverhead, Migrated}
}

// Observer is told about every sample a Run takes. Calls happen on the
// measuring goroutine between brackets, so implementations must be cheap.
type Observer interface {
	SampleAccepted(elapsed clock.TimePoint)
	SampleDiscarded(reason DiscardReason)
	RunCompleted(result Result)
}

type nopObserver struct{}

func (nopObserver) SampleAccepted(clock.TimePoint) {}
func (nopObserver) SampleDiscarded(DiscardReason) {}
func (nopObserver) RunCompleted(Result) {}
