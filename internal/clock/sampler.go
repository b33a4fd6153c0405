package clock

// Sampler brackets a code fragment with one start/end pair.
//
// ok is false when the pair cannot be compared, which currently means the
// fragment started and finished on different cores.
type Sampler interface {
	Sample(code func()) (start, end TimePoint, ok bool)
}

// NewSampler returns the bracket shape for src. With checkMigration the core
// reporting reads are used and pairs that cross cores are flagged.
func NewSampler(src Source, checkMigration bool) Sampler {
	if checkMigration {
		return coreSampler{src: src}
	}
	return plainSampler{src: src}
}

type plainSampler struct {
	src Source
}

func (s plainSampler) Sample(code func()) (TimePoint, TimePoint, bool) {
	start := s.src.StartTime()
	code()
	end := s.src.EndTime()
	return start, end, true
}

type coreSampler struct {
	src Source
}

func (s coreSampler) Sample(code func()) (TimePoint, TimePoint, bool) {
	start, startCore := s.src.StartTimeOnCore()
	code()
	end, endCore := s.src.EndTimeOnCore()
	return start, end, startCore == endCore
}
