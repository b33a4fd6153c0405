package benchmark

import (
	"bytes"
	"errors"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tscbench/internal/affinity"
	"tscbench/internal/calibration"
	"tscbench/internal/clock"
	"tscbench/internal/cpu"
	"tscbench/internal/tuning"
)

var fullProbe = cpu.StaticProbe{Counter: true, SerializingRead: true, InvariantCounter: true}

const calibCycles = 5

// calibScript is what calibration consumes with calibCycles and the plain
// search: an empty bracket at 40 ticks and an OS clock read at 90.
func calibScript() []pair {
	return append(pairs(40, 40, 40, 40, 40), pairs(90, 95, 90, 92, 90)...)
}

func newTestRunner(t *testing.T, src *scriptedSource, opts ...Option) *Runner {
	t.Helper()
	base := []Option{
		WithSource(src),
		WithProbe(fullProbe),
		WithPinner(&fakePinner{}),
		WithTuner(skipTuner()),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithCalibrationCycles(calibCycles),
	}
	r, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return r
}

func TestRun_NoopAverageNearOverhead(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(42, 41, 43, 40, 42)}
	r := newTestRunner(t, src)

	res, err := r.Run(calibration.Noop, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, clock.TimePoint(40), res.Overhead)
	assert.InEpsilon(t, float64(res.Overhead), float64(res.Average), 0.1)
	assert.Equal(t, clock.TimePoint(2), res.Net())
}

func TestRun_AveragesExactlySampleCount(t *testing.T) {
	// Inverted, equal and at-overhead pairs are interleaved with real ones;
	// none of them may be counted.
	src := &scriptedSource{calib: calibScript(), run: []pair{
		{latency: 100}, {latency: 200}, {latency: -3},
		{latency: 300}, {latency: 0}, {latency: 40},
	}}
	obs := newRecordingObserver()
	r := newTestRunner(t, src, WithObserver(obs))

	settings := Settings{SampleCount: 7}
	res, err := r.Run(func() {}, settings)
	require.NoError(t, err)

	require.Len(t, obs.accepted, settings.SampleCount)
	var sum clock.TimePoint
	for _, e := range obs.accepted {
		sum += e
		assert.Greater(t, e, res.Overhead)
	}
	assert.Equal(t, sum/clock.TimePoint(settings.SampleCount), res.Average)
	// 100 200 300 100 200 300 100
	assert.Equal(t, clock.TimePoint(1300/7), res.Average)

	assert.Equal(t, 4, obs.discarded[NonMonotonic])
	assert.Equal(t, 2, obs.discarded[BelowOverhead])
	assert.Zero(t, obs.discarded[Migrated])
	assert.Equal(t, []Result{res}, obs.completed)
}

func TestRun_MigrationCheckCountsOnlySameCore(t *testing.T) {
	calib := make([]pair, 2*calibCycles)
	for i := range calib {
		calib[i] = pair{latency: 40, startCore: 2, endCore: 2}
	}
	// Migrated pairs carry a latency that would show up in the average.
	src := &scriptedSource{calib: calib, run: []pair{
		{latency: 100, startCore: 0, endCore: 0},
		{latency: 5000, startCore: 0, endCore: 1},
		{latency: 100, startCore: 1, endCore: 1},
		{latency: 5000, startCore: 1, endCore: 0},
	}}
	obs := newRecordingObserver()
	r := newTestRunner(t, src, WithMigrationCheck(true), WithObserver(obs))
	assert.True(t, r.MigrationCheck())

	res, err := r.Run(func() {}, Settings{SampleCount: 10})
	require.NoError(t, err)

	assert.Equal(t, clock.TimePoint(100), res.Average)
	assert.Len(t, obs.accepted, 10)
	assert.Equal(t, 9, obs.discarded[Migrated])
}

func TestRun_WithoutMigrationCheckIgnoresCores(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: []pair{
		{latency: 100, startCore: 0, endCore: 1},
		{latency: 300, startCore: 3, endCore: 0},
	}}
	r := newTestRunner(t, src)

	res, err := r.Run(func() {}, Settings{SampleCount: 4})
	require.NoError(t, err)
	assert.Equal(t, clock.TimePoint(200), res.Average)
}

func TestRun_WarmupIsNotCounted(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	obs := newRecordingObserver()
	r := newTestRunner(t, src, WithObserver(obs))

	_, err := r.Initialize()
	require.NoError(t, err)
	before := src.starts

	_, err = r.Run(func() {}, Settings{SampleCount: 3, WarmupCount: 7})
	require.NoError(t, err)

	assert.Equal(t, 10, src.starts-before)
	assert.Len(t, obs.accepted, 3)
}

func TestRun_CallsFragment(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src)
	_, err := r.Initialize()
	require.NoError(t, err)

	calls := 0
	_, err = r.Run(func() { calls++ }, Settings{SampleCount: 4, WarmupCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, calls)
}

func TestRun_RetryBudget(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(-1)}
	obs := newRecordingObserver()
	r := newTestRunner(t, src, WithObserver(obs))

	_, err := r.Run(func() {}, Settings{SampleCount: 5, MaxAttempts: 20})
	assert.ErrorIs(t, err, ErrRetryBudgetExhausted)
	assert.Equal(t, 20, obs.discarded[NonMonotonic])
	assert.Empty(t, obs.completed)
}

func TestRun_InvalidSettings(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src)

	_, err := r.Run(func() {}, Settings{SampleCount: 0, WarmupCount: -1})
	require.ErrorIs(t, err, ErrInvalidSettings)
	assert.ErrorContains(t, err, "sample count")
	assert.ErrorContains(t, err, "warmup count")
	assert.Zero(t, src.starts, "nothing may be measured for invalid settings")
}

// Scenario: pinning to a core that does not exist.
func TestRun_PinFailureIsAWarning(t *testing.T) {
	var logs bytes.Buffer
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src,
		WithPinner(&fakePinner{err: affinity.ErrInvalidCore}),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)

	res, err := r.Run(func() {}, Settings{SampleCount: 3, TargetCore: 4096})
	require.NoError(t, err)
	assert.Equal(t, clock.TimePoint(100), res.Average)
	assert.Contains(t, logs.String(), "Failed to pin thread")
	assert.Contains(t, logs.String(), `"core":4096`)
}

func TestRun_PinsAndRestores(t *testing.T) {
	pinner := &fakePinner{}
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src, WithPinner(pinner))

	_, err := r.Run(func() {}, Settings{SampleCount: 1, TargetCore: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, pinner.pinned)
	assert.Equal(t, 1, pinner.restored)
}

// Scenario: migration detection requested on a processor without the
// serializing read.
func TestNew_MigrationCheckWithoutSerializingRead(t *testing.T) {
	_, err := New(
		WithProbe(cpu.StaticProbe{Counter: true, InvariantCounter: true}),
		WithMigrationCheck(true),
	)

	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "migration check", capErr.Feature)
	assert.ErrorIs(t, err, ErrSerializingReadUnsupported)
}

func TestNew_CapabilityErrors(t *testing.T) {
	tests := []struct {
		name  string
		probe cpu.StaticProbe
		opts  []Option
		want  error
	}{
		{"no counter", cpu.StaticProbe{}, nil, ErrCounterUnsupported},
		{"rdtscp barrier", cpu.StaticProbe{Counter: true}, []Option{WithBarrier(clock.SerializingRead)}, ErrSerializingReadUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(append([]Option{WithProbe(tt.probe)}, tt.opts...)...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_InvariantCounterWarning(t *testing.T) {
	var logs bytes.Buffer
	r, err := New(
		WithSource(&scriptedSource{run: pairs(1)}),
		WithProbe(cpu.StaticProbe{Counter: true, SerializingRead: true}),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	require.NoError(t, err)
	require.Len(t, r.Warnings(), 1)
	assert.Contains(t, r.Warnings()[0], "invariant")
	assert.Contains(t, logs.String(), `"level":"WARN"`)

	full := newTestRunner(t, &scriptedSource{run: pairs(1)})
	assert.Empty(t, full.Warnings())
}

func TestNew_SourceDecidesBarrier(t *testing.T) {
	src := &scriptedSource{barrier: clock.SerializingRead, run: pairs(1)}
	r := newTestRunner(t, src, WithBarrier(clock.LoadFenceOnEnd))
	assert.Equal(t, clock.SerializingRead, r.Barrier())
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithProbe(fullProbe), WithBarrier(clock.Barrier(99)))
	assert.ErrorContains(t, err, "unsupported barrier")

	_, err = New(WithProbe(fullProbe), WithCalibrationCycles(0))
	assert.ErrorContains(t, err, "calibration cycles")
}

func TestInitialize_Once(t *testing.T) {
	tuner := &countingTuner{}
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src, WithTuner(tuner))

	report, err := r.Initialize()
	require.NoError(t, err)
	assert.True(t, report.Applied())
	consumed := src.starts

	again, err := r.Initialize()
	require.NoError(t, err)
	assert.Equal(t, report, again)
	assert.Equal(t, 1, tuner.calls)
	assert.Equal(t, consumed, src.starts)

	assert.Equal(t, calibration.Result{CounterOverhead: 40, OSClockOverheadDelta: 50}, r.Calibration())
}

func TestInitialize_Stabilized(t *testing.T) {
	src := &scriptedSource{calib: pairs(40, 41, 42, 90, 91, 92), run: pairs(100)}
	r := newTestRunner(t, src, WithCalibrationCycles(100), WithStabilizedCalibration(3))

	_, err := r.Initialize()
	require.NoError(t, err)
	assert.Equal(t, 6, src.starts)
	assert.Equal(t, calibration.Result{CounterOverhead: 40, OSClockOverheadDelta: 50}, r.Calibration())
}

func TestInitialize_CalibrationBudget(t *testing.T) {
	src := &scriptedSource{run: pairs(-1)}
	r := newTestRunner(t, src, WithCalibrationAttempts(50))

	_, err := r.Initialize()
	assert.ErrorIs(t, err, calibration.ErrAttemptsExhausted)

	_, err = r.Run(func() {}, DefaultSettings())
	assert.ErrorIs(t, err, calibration.ErrAttemptsExhausted)
}

func TestInitialize_ReportsTuning(t *testing.T) {
	var logs bytes.Buffer
	src := &scriptedSource{calib: calibScript(), run: pairs(100)}
	r := newTestRunner(t, src,
		WithTuner(tuning.Skip{}),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)

	report, err := r.Initialize()
	require.NoError(t, err)
	assert.Equal(t, tuning.Unavailable, report.Scheduling)
	assert.Contains(t, logs.String(), "Real-time scheduling not applied")
}

// threadEvents replaces the OS thread lock hooks for one test.
func threadEvents(t *testing.T) *[]string {
	t.Helper()
	var events []string
	prevLock, prevUnlock := lockOSThread, unlockOSThread
	lockOSThread = func() { events = append(events, "lock") }
	unlockOSThread = func() { events = append(events, "unlock") }
	t.Cleanup(func() { lockOSThread, unlockOSThread = prevLock, prevUnlock })
	return &events
}

type eventTuner struct {
	events *[]string
	report tuning.Report
}

func (t eventTuner) Tune() tuning.Report {
	*t.events = append(*t.events, "tune")
	return t.report
}

func TestInitialize_TunesLockedThread(t *testing.T) {
	tests := []struct {
		name   string
		report tuning.Report
		want   []string
	}{
		{"realtime applied keeps the thread", tuning.Report{Scheduling: tuning.Applied}, []string{"lock", "tune"}},
		{"realtime unavailable releases it", tuning.Report{Scheduling: tuning.Unavailable}, []string{"lock", "tune", "unlock"}},
		{"realtime failed releases it", tuning.Report{Scheduling: tuning.Failed}, []string{"lock", "tune", "unlock"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := threadEvents(t)
			src := &scriptedSource{calib: calibScript(), run: pairs(100)}
			r := newTestRunner(t, src, WithTuner(eventTuner{events: events, report: tt.report}))

			_, err := r.Initialize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, *events)
		})
	}
}

// Scenario: timing an empty fragment once.
func TestMeasureTime_Raw(t *testing.T) {
	src := &scriptedSource{calib: calibScript(), run: pairs(40, -7)}
	r := newTestRunner(t, src)
	_, err := r.Initialize()
	require.NoError(t, err)

	got := r.MeasureTime(func() {})
	assert.Equal(t, clock.TimePoint(40), got, "overhead must not be subtracted")
	assert.Zero(t, r.MeasureTime(func() {}))
}

func TestResultNet(t *testing.T) {
	assert.Equal(t, clock.TimePoint(60), Result{Average: 100, Overhead: 40}.Net())
	assert.Zero(t, Result{Average: 30, Overhead: 40}.Net())
}

func TestDiscardReasonString(t *testing.T) {
	var names []string
	for _, r := range DiscardReasons() {
		names = append(names, r.String())
	}
	assert.Equal(t, []string{"non_monotonic", "below_overhead", "migrated"}, names)
	assert.Equal(t, "unknown", DiscardReason(7).String())
}

func TestCapabilityErrorMessage(t *testing.T) {
	err := error(&CapabilityError{Feature: "migration check", Err: ErrSerializingReadUnsupported})
	assert.Equal(t, "capability check failed for migration check: serializing counter read (rdtscp) not supported", err.Error())
	assert.True(t, errors.Is(err, ErrSerializingReadUnsupported))
}

// Scenario: repeated runs on real hardware agree.
func TestRun_HardwareStability(t *testing.T) {
	if testing.Short() {
		t.Skip("hardware timing test")
	}
	probe := cpu.NewHardwareProbe()
	if !probe.InvariantCounterSupported() {
		t.Skip("no invariant timestamp counter")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r, err := New(WithProbe(probe), WithTuner(skipTuner()),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	work := func() {
		x := 0
		for i := 0; i < 2000; i++ {
			x += i * i
		}
		sink = x
	}
	settings := Settings{SampleCount: 1000, WarmupCount: 1000}

	first, err := r.Run(work, settings)
	require.NoError(t, err)
	second, err := r.Run(work, settings)
	require.NoError(t, err)

	assert.Greater(t, first.Average, first.Overhead)
	assert.Equal(t, first.Overhead, second.Overhead)
	ratio := float64(second.Net()) / float64(first.Net())
	assert.True(t, ratio >= 0.8 && ratio <= 1.25, "net times diverge: %d vs %d", first.Net(), second.Net())
}

var sink int
