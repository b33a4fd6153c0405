package benchmark

import (
	"fmt"

	"tscbench/internal/calibration"
	"tscbench/internal/clock"
)

// Report is the outcome of running one fragment under one barrier kind.
type Report struct {
	Barrier     clock.Barrier
	Result      Result
	Calibration calibration.Result
}

// Comparison holds percentage changes of a report against a baseline.
type Comparison struct {
	Barrier      clock.Barrier
	AverageDiff  float64 // Percentage change
	OverheadDiff float64 // Percentage change
	NetDiff      float64 // Percentage change
	Baseline     Report
	Curr         Report
}

// RunAcross builds one Runner per barrier with opts, initializes it and runs
// code with settings. Reports come back in barrier order.
func RunAcross(barriers []clock.Barrier, code func(), settings Settings, opts ...Option) ([]Report, error) {
	reports := make([]Report, 0, len(barriers))
	for _, b := range barriers {
		runner, err := New(append(opts, WithBarrier(b))...)
		if err != nil {
			return nil, fmt.Errorf("barrier %s: %w", b, err)
		}
		res, err := runner.Run(code, settings)
		if err != nil {
			return nil, fmt.Errorf("barrier %s: %w", b, err)
		}
		reports = append(reports, Report{
			Barrier:     b,
			Result:      res,
			Calibration: runner.Calibration(),
		})
	}
	return reports, nil
}

// Compare returns one comparison per report against baseline. A zero
// baseline field leaves the matching diff at zero.
func Compare(baseline Report, reports []Report) []Comparison {
	comparisons := make([]Comparison, 0, len(reports))
	for _, c := range reports {
		comparisons = append(comparisons, Comparison{
			Barrier:      c.Barrier,
			AverageDiff:  percentDiff(baseline.Result.Average, c.Result.Average),
			OverheadDiff: percentDiff(baseline.Result.Overhead, c.Result.Overhead),
			NetDiff:      percentDiff(baseline.Result.Net(), c.Result.Net()),
			Baseline:     baseline,
			Curr:         c,
		})
	}
	return comparisons
}

func percentDiff(prev, curr clock.TimePoint) float64 {
	if prev == 0 {
		return 0
	}
	return (float64(curr) - float64(prev)) / float64(prev) * 100
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %.2f%% average", c.Barrier, c.AverageDiff)
}
