// Package calibration measures the fixed cost of the timestamp bracket itself
// by searching for minimum latencies over repeated observations.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tscbench/internal/clock"
)

const (
	DefaultCycles              = 100
	DefaultStabilizedThreshold = DefaultCycles * 10 / 100
)

var (
	ErrInvalidCycles     = errors.New("calibration: cycles must be at least 1")
	ErrInvalidThreshold  = errors.New("calibration: stabilized threshold must be at least 1")
	ErrAttemptsExhausted = errors.New("calibration: attempt budget exhausted before enough valid observations")
)

// Noop is the empty fragment used to measure the counter overhead.
func Noop() {}

// ReadOSClock is one read of the operating system wall clock.
func ReadOSClock() {
	_ = time.Now()
}

// Result is the outcome of an overhead measurement.
type Result struct {
	// CounterOverhead is the minimum latency of an empty bracket.
	CounterOverhead clock.TimePoint
	// OSClockOverheadDelta is the extra latency of one OS clock read on top
	// of CounterOverhead.
	OSClockOverheadDelta clock.TimePoint
}

// Engine runs minimum-latency searches through a Sampler.
type Engine struct {
	sampler     clock.Sampler
	maxAttempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts bounds the number of brackets a single search may take,
// valid or not. Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.maxAttempts = n
	}
}

// NewEngine returns an Engine that brackets fragments with s.
func NewEngine(s clock.Sampler, opts ...Option) *Engine {
	e := &Engine{sampler: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MeasureMinimumLatency brackets code until cycles valid observations have
// been taken and returns the smallest one. An observation is valid when the
// sampler accepts it and end is strictly after start.
func (e *Engine) MeasureMinimumLatency(cycles int, code func()) (clock.TimePoint, error) {
	if cycles < 1 {
		return 0, ErrInvalidCycles
	}

	minLatency := clock.TimePoint(math.MaxUint64)
	attempts := 0
	for valid := 0; valid < cycles; {
		if e.exhausted(attempts) {
			return 0, fmt.Errorf("%w: %d valid of %d after %d attempts", ErrAttemptsExhausted, valid, cycles, attempts)
		}
		attempts++

		start, end, ok := e.sampler.Sample(code)
		if !ok || end <= start {
			continue
		}
		minLatency = min(minLatency, end-start)
		valid++
	}
	return minLatency, nil
}

// MeasureStabilizedMinimumLatency is MeasureMinimumLatency with an early exit:
// the search stops once threshold consecutive valid observations, counting
// the one that set it, have not lowered the minimum.
func (e *Engine) MeasureStabilizedMinimumLatency(cycles, threshold int, code func()) (clock.TimePoint, error) {
	if cycles < 1 {
		return 0, ErrInvalidCycles
	}
	if threshold < 1 {
		return 0, ErrInvalidThreshold
	}

	minLatency := clock.TimePoint(math.MaxUint64)
	stable := 0
	attempts := 0
	for valid := 0; valid < cycles && stable < threshold; {
		if e.exhausted(attempts) {
			return 0, fmt.Errorf("%w: %d valid of %d after %d attempts", ErrAttemptsExhausted, valid, cycles, attempts)
		}
		attempts++

		start, end, ok := e.sampler.Sample(code)
		if !ok || end <= start {
			continue
		}
		if latency := end - start; latency < minLatency {
			minLatency = latency
			stable = 0
		}
		stable++
		valid++
	}
	return minLatency, nil
}

// MeasureOverhead measures the empty bracket and then one OS clock read.
func (e *Engine) MeasureOverhead(cycles int) (Result, error) {
	counter, err := e.MeasureMinimumLatency(cycles, Noop)
	if err != nil {
		return Result{}, fmt.Errorf("measure counter overhead: %w", err)
	}
	osClock, err := e.MeasureMinimumLatency(cycles, ReadOSClock)
	if err != nil {
		return Result{}, fmt.Errorf("measure os clock overhead: %w", err)
	}
	return newResult(counter, osClock), nil
}

// MeasureStabilizedOverhead is MeasureOverhead using the stabilized search.
func (e *Engine) MeasureStabilizedOverhead(cycles, threshold int) (Result, error) {
	counter, err := e.MeasureStabilizedMinimumLatency(cycles, threshold, Noop)
	if err != nil {
		return Result{}, fmt.Errorf("measure counter overhead: %w", err)
	}
	osClock, err := e.MeasureStabilizedMinimumLatency(cycles, threshold, ReadOSClock)
	if err != nil {
		return Result{}, fmt.Errorf("measure os clock overhead: %w", err)
	}
	return newResult(counter, osClock), nil
}

func newResult(counter, osClock clock.TimePoint) Result {
	r := Result{CounterOverhead: counter}
	if osClock > counter {
		r.OSClockOverheadDelta = osClock - counter
	}
	return r
}

func (e *Engine) exhausted(attempts int) bool {
	return e.maxAttempts > 0 && attempts >= e.maxAttempts
}
