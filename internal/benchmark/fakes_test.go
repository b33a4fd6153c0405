package benchmark

import (
	"sync"

	"tscbench/internal/affinity"
	"tscbench/internal/clock"
	"tscbench/internal/tuning"
)

// pair is one scripted bracket. A negative latency produces an inverted pair.
type pair struct {
	latency   int64
	startCore clock.CoreID
	endCore   clock.CoreID
}

func pairs(latencies ...int64) []pair {
	out := make([]pair, len(latencies))
	for i, l := range latencies {
		out[i] = pair{latency: l}
	}
	return out
}

// scriptedSource serves calib once, in order, and then cycles through run.
type scriptedSource struct {
	barrier clock.Barrier
	calib   []pair
	run     []pair

	starts  int
	now     clock.TimePoint
	current pair
}

func (s *scriptedSource) next() clock.TimePoint {
	if s.starts < len(s.calib) {
		s.current = s.calib[s.starts]
	} else {
		s.current = s.run[(s.starts-len(s.calib))%len(s.run)]
	}
	s.starts++
	s.now += 10_000
	return s.now
}

func (s *scriptedSource) end() clock.TimePoint {
	return clock.TimePoint(int64(s.now) + s.current.latency)
}

func (s *scriptedSource) StartTime() clock.TimePoint { return s.next() }
func (s *scriptedSource) EndTime() clock.TimePoint { return s.end() }

func (s *scriptedSource) StartTimeOnCore() (clock.TimePoint, clock.CoreID) {
	t := s.next()
	return t, s.current.startCore
}

func (s *scriptedSource) EndTimeOnCore() (clock.TimePoint, clock.CoreID) {
	return s.end(), s.current.endCore
}

func (s *scriptedSource) Barrier() clock.Barrier { return s.barrier }

// fakePinner records pins and restores.
type fakePinner struct {
	err      error
	pinned   []int
	restored int
}

func (p *fakePinner) Pin(core int) (func(), error) {
	if p.err != nil {
		return nil, p.err
	}
	p.pinned = append(p.pinned, core)
	return func() { p.restored++ }, nil
}

var _ affinity.Pinner = (*fakePinner)(nil)

type countingTuner struct {
	mu    sync.Mutex
	calls int
}

func (t *countingTuner) Tune() tuning.Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return tuning.Report{Scheduling: tuning.Applied, MemoryLock: tuning.Applied}
}

func skipTuner() tuning.Tuner {
	return tuning.Skip{}
}

// recordingObserver keeps everything it is told.
type recordingObserver struct {
	accepted  []clock.TimePoint
	discarded map[DiscardReason]int
	completed []Result
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{discarded: make(map[DiscardReason]int)}
}

func (o *recordingObserver) SampleAccepted(elapsed clock.TimePoint) {
	o.accepted = append(o.accepted, elapsed)
}

func (o *recordingObserver) SampleDiscarded(reason DiscardReason) {
	o.discarded[reason]++
}

func (o *recordingObserver) RunCompleted(r Result) {
	o.completed = append(o.completed, r)
}
