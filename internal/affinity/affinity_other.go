//go:build !linux

package affinity

import "fmt"

type unsupportedPinner struct{}

// NewPinner returns the platform pinner. Outside Linux every pin fails and
// measurements run unpinned.
func NewPinner() Pinner {
	return unsupportedPinner{}
}

func (unsupportedPinner) Pin(core int) (func(), error) {
	if core < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCore, core)
	}
	return nil, ErrUnsupported
}
