package benchmark

import (
	"log/slog"

	"tscbench/internal/affinity"
	"tscbench/internal/clock"
	"tscbench/internal/cpu"
	"tscbench/internal/tuning"
)

// Option configures a Runner at construction.
type Option func(*Runner)

// WithBarrier selects the timestamp ordering discipline. The default is
// clock.SingleSerializeBoundary.
func WithBarrier(b clock.Barrier) Option {
	return func(r *Runner) {
		r.barrier = b
	}
}

// WithMigrationCheck discards samples whose start and end reads ran on
// different cores. It requires the serializing counter read.
func WithMigrationCheck(enabled bool) Option {
	return func(r *Runner) {
		r.migrationCheck = enabled
	}
}

func WithProbe(p cpu.Probe) Option {
	return func(r *Runner) {
		r.probe = p
	}
}

func WithPinner(p affinity.Pinner) Option {
	return func(r *Runner) {
		r.pinner = p
	}
}

func WithTuner(t tuning.Tuner) Option {
	return func(r *Runner) {
		r.tuner = t
	}
}

// WithSource replaces the hardware timestamp source. The runner takes its
// barrier kind from src.
func WithSource(src clock.Source) Option {
	return func(r *Runner) {
		r.source = src
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithCalibrationCycles sets how many valid observations each overhead
// search takes.
func WithCalibrationCycles(n int) Option {
	return func(r *Runner) {
		r.calibrationCycles = n
	}
}

// WithStabilizedCalibration switches overhead measurement to the stabilized
// search with the given threshold. Zero keeps the plain search.
func WithStabilizedCalibration(threshold int) Option {
	return func(r *Runner) {
		r.stabilizedThreshold = threshold
	}
}

// WithCalibrationAttempts bounds the brackets each overhead search may take.
// Zero means unbounded.
func WithCalibrationAttempts(n int) Option {
	return func(r *Runner) {
		r.calibrationAttempts = n
	}
}
