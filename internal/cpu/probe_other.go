//go:build !amd64

package cpu

// Off amd64 the clock package falls back to the runtime's monotonic clock:
// always readable and always consistent across cores, but with no core id.
func detect() *HardwareProbe {
	return &HardwareProbe{
		counter:          true,
		serializingRead:  false,
		invariantCounter: true,
	}
}
