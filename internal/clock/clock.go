// Package clock reads the hardware timestamp counter behind a fixed
// instruction-ordering discipline.
//
// A Source is chosen once, by Barrier kind, and never switches discipline
// afterwards: calibration and every sample taken later must go through the
// same Start/End sequence for the overhead figure to mean anything.
package clock

// TimePoint is a raw counter value. Only differences between two values taken
// from the same Source are meaningful. On amd64 the unit is TSC ticks, on other
// architectures it is nanoseconds.
type TimePoint uint64

// CoreID identifies the processor that executed a serializing counter read.
type CoreID uint32

// Source produces start and end timestamps around a measured region.
type Source interface {
	StartTime() TimePoint
	EndTime() TimePoint

	// StartTimeOnCore and EndTimeOnCore additionally report the core that
	// executed the read. They use the serializing read instruction.
	StartTimeOnCore() (TimePoint, CoreID)
	EndTimeOnCore() (TimePoint, CoreID)

	Barrier() Barrier
}

// coreFromAux extracts the processor id from the RDTSCP auxiliary value.
func coreFromAux(aux uint64) CoreID {
	return CoreID(aux & 0xFFFFFF)
}

// SplitAux splits an RDTSCP auxiliary value into chip and core numbers, as
// laid out by Linux in IA32_TSC_AUX.
func SplitAux(aux uint64) (chip, core CoreID) {
	return CoreID((aux & 0xFFF000) >> 12), CoreID(aux & 0xFFF)
}
