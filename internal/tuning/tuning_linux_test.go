//go:build linux

package tuning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealtime_Unprivileged(t *testing.T) {
	tuner := &Realtime{geteuid: func() int { return 1000 }}
	r := tuner.Tune()

	assert.Equal(t, Unavailable, r.Scheduling)
	assert.Equal(t, Unavailable, r.MemoryLock)
	assert.ErrorIs(t, r.SchedulingErr, ErrNotPrivileged)
	assert.ErrorIs(t, r.MemoryLockErr, ErrNotPrivileged)
}
