// Package benchmark times short code fragments with the hardware timestamp
// counter.
//
// A Runner is built once per configuration: the barrier kind and whether
// core migration is checked are fixed at construction. Initialize applies
// best-effort real-time tuning and calibrates the bracket overhead; Run then
// averages a fixed number of filtered samples.
package benchmark

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"tscbench/internal/affinity"
	"tscbench/internal/calibration"
	"tscbench/internal/clock"
	"tscbench/internal/cpu"
	"tscbench/internal/tuning"
)

// Runner is not safe for concurrent use.
type Runner struct {
	barrier             clock.Barrier
	migrationCheck      bool
	probe               cpu.Probe
	pinner              affinity.Pinner
	tuner               tuning.Tuner
	source              clock.Source
	logger              *slog.Logger
	observer            Observer
	calibrationCycles   int
	stabilizedThreshold int
	calibrationAttempts int

	sampler  clock.Sampler
	warnings []string

	initOnce    sync.Once
	report      tuning.Report
	calibration calibration.Result
	initErr     error
}

// New checks processor capabilities against the requested configuration and
// returns a Runner ready to Initialize.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{
		barrier:           clock.SingleSerializeBoundary,
		calibrationCycles: calibration.DefaultCycles,
		observer:          nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.probe == nil {
		r.probe = cpu.NewHardwareProbe()
	}
	if r.pinner == nil {
		r.pinner = affinity.NewPinner()
	}
	if r.tuner == nil {
		r.tuner = tuning.NewRealtime()
	}
	if r.source != nil {
		r.barrier = r.source.Barrier()
	}

	if !r.barrier.Valid() {
		return nil, fmt.Errorf("unsupported barrier %v", r.barrier)
	}
	if r.calibrationCycles < 1 {
		return nil, fmt.Errorf("calibration cycles must be at least 1, got %d", r.calibrationCycles)
	}
	if r.stabilizedThreshold < 0 || r.calibrationAttempts < 0 {
		return nil, fmt.Errorf("calibration threshold and attempts must not be negative")
	}

	if err := r.checkCapabilities(); err != nil {
		return nil, err
	}

	if r.source == nil {
		src, err := clock.New(r.barrier)
		if err != nil {
			return nil, err
		}
		r.source = src
	}
	r.sampler = clock.NewSampler(r.source, r.migrationCheck)
	return r, nil
}

var (
	lockOSThread   = runtime.LockOSThread
	unlockOSThread = runtime.UnlockOSThread
)

func (r *Runner) checkCapabilities() error {
	if !r.probe.CounterSupported() {
		return &CapabilityError{Feature: "timestamp counter", Err: ErrCounterUnsupported}
	}
	if r.migrationCheck && !r.probe.SerializingReadSupported() {
		return &CapabilityError{Feature: "migration check", Err: ErrSerializingReadUnsupported}
	}
	if r.barrier == clock.SerializingRead && !r.probe.SerializingReadSupported() {
		return &CapabilityError{Feature: "barrier " + r.barrier.String(), Err: ErrSerializingReadUnsupported}
	}
	if !r.probe.InvariantCounterSupported() {
		msg := "invariant timestamp counter not supported, results depend on frequency scaling"
		r.warnings = append(r.warnings, msg)
		r.logger.Warn(msg)
	}
	return nil
}

// Initialize applies real-time tuning and calibrates the bracket overhead.
// Only the first call does any work; later calls return the same outcome.
//
// Tuning and calibration happen on one locked OS thread. When the real-time
// policy is applied the calling goroutine stays locked to that thread, so the
// policy covers later runs from the same goroutine and the thread is never
// handed back to the scheduler for other goroutines.
func (r *Runner) Initialize() (tuning.Report, error) {
	r.initOnce.Do(func() {
		lockOSThread()
		r.report = r.tuner.Tune()
		r.report.Log(r.logger)
		if r.report.Scheduling != tuning.Applied {
			defer unlockOSThread()
		}

		engine := calibration.NewEngine(r.sampler, calibration.WithMaxAttempts(r.calibrationAttempts))
		var err error
		if r.stabilizedThreshold > 0 {
			r.calibration, err = engine.MeasureStabilizedOverhead(r.calibrationCycles, r.stabilizedThreshold)
		} else {
			r.calibration, err = engine.MeasureOverhead(r.calibrationCycles)
		}
		if err != nil {
			r.initErr = fmt.Errorf("calibrate: %w", err)
			return
		}

		r.logger.Debug("Calibration complete",
			"barrier", r.barrier.String(),
			"counter_overhead", uint64(r.calibration.CounterOverhead),
			"os_clock_overhead_delta", uint64(r.calibration.OSClockOverheadDelta),
			"stabilized", r.stabilizedThreshold > 0)
	})
	return r.report, r.initErr
}

// Run brackets code until settings.SampleCount samples are accepted and
// returns their average together with the calibrated overhead. Initialize is
// called first if it has not been.
//
// Samples are discarded when the end read is not after the start, when the
// elapsed time does not exceed the overhead, or, with migration checking,
// when the reads ran on different cores.
func (r *Runner) Run(code func(), settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	if _, err := r.Initialize(); err != nil {
		return Result{}, err
	}

	lockOSThread()
	defer unlockOSThread()

	restore, err := r.pinner.Pin(settings.TargetCore)
	if err != nil {
		r.logger.Warn("Failed to pin thread, running unpinned", "core", settings.TargetCore, "error", err)
	} else {
		defer restore()
	}

	for i := 0; i < settings.WarmupCount; i++ {
		r.sampler.Sample(code)
	}

	overhead := r.calibration.CounterOverhead
	var sum clock.TimePoint
	attempts := 0
	for accepted := 0; accepted < settings.SampleCount; {
		if settings.MaxAttempts > 0 && attempts >= settings.MaxAttempts {
			return Result{}, fmt.Errorf("%w: %d of %d samples after %d attempts",
				ErrRetryBudgetExhausted, accepted, settings.SampleCount, attempts)
		}
		attempts++

		start, end, ok := r.sampler.Sample(code)
		if !ok {
			r.observer.SampleDiscarded(Migrated)
			continue
		}
		if end <= start {
			r.observer.SampleDiscarded(NonMonotonic)
			continue
		}
		elapsed := end - start
		if elapsed <= overhead {
			r.observer.SampleDiscarded(BelowOverhead)
			continue
		}

		sum += elapsed
		accepted++
		r.observer.SampleAccepted(elapsed)
	}

	result := Result{
		Average:  sum / clock.TimePoint(settings.SampleCount),
		Overhead: overhead,
	}
	r.observer.RunCompleted(result)
	return result, nil
}

// MeasureTime brackets code once and returns the raw elapsed counter value.
// Nothing is filtered or subtracted; an inverted pair reads as zero.
func (r *Runner) MeasureTime(code func()) clock.TimePoint {
	start := r.source.StartTime()
	code()
	end := r.source.EndTime()
	if end <= start {
		return 0
	}
	return end - start
}

// Calibration returns the overhead measured by Initialize, or zero values
// before it has run.
func (r *Runner) Calibration() calibration.Result {
	return r.calibration
}

func (r *Runner) Barrier() clock.Barrier {
	return r.barrier
}

func (r *Runner) MigrationCheck() bool {
	return r.migrationCheck
}

// Warnings lists capability problems found at construction that did not
// prevent it.
func (r *Runner) Warnings() []string {
	return append([]string(nil), r.warnings...)
}
