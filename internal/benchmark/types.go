package benchmark

import (
	"errors"
	"fmt"

	"tscbench/internal/clock"
)

const (
	DefaultSampleCount = 100
	DefaultTargetCore  = 0
	DefaultWarmupCount = 0
)

// Settings controls one Run.
type Settings struct {
	// SampleCount is the number of valid samples averaged into the result.
	SampleCount int `json:"samples" mapstructure:"samples"`
	// TargetCore is the core the calling thread is pinned to for the run.
	TargetCore int `json:"core" mapstructure:"core"`
	// WarmupCount brackets run before sampling, whose timings are dropped.
	WarmupCount int `json:"warmup" mapstructure:"warmup"`
	// MaxAttempts bounds the brackets a run may take, accepted or discarded.
	// Zero retries until SampleCount samples are accepted.
	MaxAttempts int `json:"max_attempts" mapstructure:"max_attempts"`
}

// DefaultSettings returns the settings used when the caller has no opinion.
func DefaultSettings() Settings {
	return Settings{
		SampleCount: DefaultSampleCount,
		TargetCore:  DefaultTargetCore,
		WarmupCount: DefaultWarmupCount,
	}
}

// Validate reports every out-of-range field at once.
func (s Settings) Validate() error {
	var errs []error
	if s.SampleCount < 1 {
		errs = append(errs, fmt.Errorf("sample count must be at least 1, got %d", s.SampleCount))
	}
	if s.WarmupCount < 0 {
		errs = append(errs, fmt.Errorf("warmup count must not be negative, got %d", s.WarmupCount))
	}
	if s.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("max attempts must not be negative, got %d", s.MaxAttempts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Result is the outcome of a Run. Average still includes the bracket
// overhead; Net subtracts it.
type Result struct {
	Average  clock.TimePoint `json:"average"`
	Overhead clock.TimePoint `json:"overhead"`
}

// Net returns Average minus Overhead, or zero when the overhead dominates.
func (r Result) Net() clock.TimePoint {
	if r.Average <= r.Overhead {
		return 0
	}
	return r.Average - r.Overhead
}
