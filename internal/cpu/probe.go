// Package cpu answers whether the processor has the timing features the
// benchmark runner depends on.
package cpu

// Probe reports hardware timing capabilities.
type Probe interface {
	// CounterSupported reports a readable timestamp counter.
	CounterSupported() bool
	// SerializingReadSupported reports a counter read that waits for prior
	// instructions and returns the executing core (RDTSCP on x86).
	SerializingReadSupported() bool
	// InvariantCounterSupported reports a counter that ticks at a constant
	// rate and is synchronized across cores.
	InvariantCounterSupported() bool
}

// StaticProbe returns fixed answers. Useful for simulating hardware.
type StaticProbe struct {
	Counter          bool
	SerializingRead  bool
	InvariantCounter bool
}

func (p StaticProbe) CounterSupported() bool { return p.Counter }
func (p StaticProbe) SerializingReadSupported() bool { return p.SerializingRead }
func (p StaticProbe) InvariantCounterSupported() bool { return p.InvariantCounter }

// HardwareProbe holds the capabilities of the running processor, read once
// by NewHardwareProbe.
type HardwareProbe struct {
	counter          bool
	serializingRead  bool
	invariantCounter bool
}

// NewHardwareProbe queries the processor.
func NewHardwareProbe() *HardwareProbe {
	return detect()
}

func (p *HardwareProbe) CounterSupported() bool { return p.counter }
func (p *HardwareProbe) SerializingReadSupported() bool { return p.serializingRead }
func (p *HardwareProbe) InvariantCounterSupported() bool { return p.invariantCounter }
