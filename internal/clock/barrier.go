package clock

import (
	"fmt"
	"strings"
)

// Barrier selects which serializing and fencing instructions surround each
// counter read.
type Barrier int

const (
	// SingleSerializeBoundary issues one CPUID before every read.
	SingleSerializeBoundary Barrier = iota
	// LoadFenceOnEnd serializes before Start; End is LFENCE, read, CPUID.
	LoadFenceOnEnd
	// FullFenceOnEnd serializes before Start; End is CPUID, read, MFENCE.
	FullFenceOnEnd
	// SerializingRead ends with RDTSCP followed by CPUID.
	SerializingRead
	// DoubleSerializeBoundary wraps every read in CPUID on both sides.
	DoubleSerializeBoundary
)

var barrierNames = map[Barrier]string{
	SingleSerializeBoundary: "single-serialize",
	LoadFenceOnEnd:          "lfence",
	FullFenceOnEnd:          "mfence",
	SerializingRead:         "rdtscp",
	DoubleSerializeBoundary: "double-serialize",
}

// Barriers returns every barrier kind in declaration order.
func Barriers() []Barrier {
	return []Barrier{
		SingleSerializeBoundary,
		LoadFenceOnEnd,
		FullFenceOnEnd,
		SerializingRead,
		DoubleSerializeBoundary,
	}
}

func (b Barrier) String() string {
	if name, ok := barrierNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Barrier(%d)", int(b))
}

// Valid reports whether b is one of the declared kinds.
func (b Barrier) Valid() bool {
	_, ok := barrierNames[b]
	return ok
}

// ParseBarrier accepts the names printed by Barrier.String, case-insensitively.
func ParseBarrier(s string) (Barrier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for b, n := range barrierNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown barrier %q (want one of %s)", s, strings.Join(barrierList(), ", "))
}

func barrierList() []string {
	names := make([]string, 0, len(barrierNames))
	for _, b := range Barriers() {
		names = append(names, b.String())
	}
	return names
}
