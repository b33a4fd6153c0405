package benchmark

import (
	"errors"
	"fmt"
)

var (
	ErrCounterUnsupported         = errors.New("timestamp counter not supported")
	ErrSerializingReadUnsupported = errors.New("serializing counter read (rdtscp) not supported")
	ErrInvalidSettings            = errors.New("invalid benchmark settings")
	ErrRetryBudgetExhausted       = errors.New("retry budget exhausted before enough valid samples")
)

// CapabilityError is returned by New when the processor lacks a feature the
// requested configuration depends on.
type CapabilityError struct {
	// Feature names what the configuration asked for.
	Feature string
	Err     error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability check failed for %s: %v", e.Feature, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
