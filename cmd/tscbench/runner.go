package main

import (
	"fmt"
	"io"
	"log/slog"

	"tscbench/internal/benchmark"
)

// newRunner builds a Runner from the loaded configuration, reporting samples
// to the metrics collector.
func (a *app) newRunner(extra ...benchmark.Option) (*benchmark.Runner, error) {
	opts, err := a.runnerOptions()
	if err != nil {
		return nil, err
	}
	return benchmark.New(append(opts, extra...)...)
}

func (a *app) runnerOptions() ([]benchmark.Option, error) {
	opts, err := a.cfg.RunnerOptions()
	if err != nil {
		return nil, err
	}
	return append(opts,
		benchmark.WithLogger(slog.Default()),
		benchmark.WithObserver(a.metrics),
	), nil
}

func printWarnings(w io.Writer, r *benchmark.Runner) {
	for _, msg := range r.Warnings() {
		fmt.Fprintln(w, warnStyle.Render("Warning: "+msg))
	}
}
