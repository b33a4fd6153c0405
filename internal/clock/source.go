package clock

import "fmt"

// New returns the Source implementing barrier b.
func New(b Barrier) (Source, error) {
	switch b {
	case SingleSerializeBoundary:
		return singleSerialize{}, nil
	case LoadFenceOnEnd:
		return loadFenceOnEnd{}, nil
	case FullFenceOnEnd:
		return fullFenceOnEnd{}, nil
	case SerializingRead:
		return serializingRead{}, nil
	case DoubleSerializeBoundary:
		return doubleSerialize{}, nil
	}
	return nil, fmt.Errorf("clock: unsupported barrier %v", b)
}

// Every Start shares the same shape: serialize, then read.

func serializedStart() TimePoint {
	return TimePoint(cpuidRdtsc())
}

func serializedStartOnCore() (TimePoint, CoreID) {
	tsc, aux := cpuidRdtscp()
	return TimePoint(tsc), coreFromAux(aux)
}

type singleSerialize struct{}

func (singleSerialize) Barrier() Barrier { return SingleSerializeBoundary }
func (singleSerialize) StartTime() TimePoint { return serializedStart() }
func (singleSerialize) StartTimeOnCore() (TimePoint, CoreID) { return serializedStartOnCore() }
func (singleSerialize) EndTime() TimePoint { return TimePoint(cpuidRdtsc()) }
func (singleSerialize) EndTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := cpuidRdtscp()
	return TimePoint(tsc), coreFromAux(aux)
}

type loadFenceOnEnd struct{}

func (loadFenceOnEnd) Barrier() Barrier { return LoadFenceOnEnd }
func (loadFenceOnEnd) StartTime() TimePoint { return serializedStart() }
func (loadFenceOnEnd) StartTimeOnCore() (TimePoint, CoreID) { return serializedStartOnCore() }
func (loadFenceOnEnd) EndTime() TimePoint { return TimePoint(lfenceRdtscCpuid()) }
func (loadFenceOnEnd) EndTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := lfenceRdtscpCpuid()
	return TimePoint(tsc), coreFromAux(aux)
}

type fullFenceOnEnd struct{}

func (fullFenceOnEnd) Barrier() Barrier { return FullFenceOnEnd }
func (fullFenceOnEnd) StartTime() TimePoint { return serializedStart() }
func (fullFenceOnEnd) StartTimeOnCore() (TimePoint, CoreID) { return serializedStartOnCore() }
func (fullFenceOnEnd) EndTime() TimePoint { return TimePoint(cpuidRdtscMfence()) }
func (fullFenceOnEnd) EndTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := cpuidRdtscpMfence()
	return TimePoint(tsc), coreFromAux(aux)
}

// serializingRead relies on RDTSCP waiting for prior instructions, so End has
// no leading fence. The trailing CPUID keeps later work out of the window.
type serializingRead struct{}

func (serializingRead) Barrier() Barrier { return SerializingRead }
func (serializingRead) StartTime() TimePoint { return serializedStart() }
func (serializingRead) StartTimeOnCore() (TimePoint, CoreID) { return serializedStartOnCore() }
func (serializingRead) EndTime() TimePoint {
	tsc, _ := rdtscpCpuid()
	return TimePoint(tsc)
}
func (serializingRead) EndTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := rdtscpCpuid()
	return TimePoint(tsc), coreFromAux(aux)
}

type doubleSerialize struct{}

func (doubleSerialize) Barrier() Barrier { return DoubleSerializeBoundary }
func (doubleSerialize) StartTime() TimePoint { return TimePoint(cpuidRdtscCpuid()) }
func (doubleSerialize) EndTime() TimePoint { return TimePoint(cpuidRdtscCpuid()) }
func (doubleSerialize) StartTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := cpuidRdtscpCpuid()
	return TimePoint(tsc), coreFromAux(aux)
}
func (doubleSerialize) EndTimeOnCore() (TimePoint, CoreID) {
	tsc, aux := cpuidRdtscpCpuid()
	return TimePoint(tsc), coreFromAux(aux)
}
