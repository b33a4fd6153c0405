package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tscbench/internal/config"
	"tscbench/internal/metrics"
	"tscbench/internal/telemetry"
)

var exit = os.Exit

// app holds what initConfig sets up for the subcommands.
type app struct {
	cfgFile  string
	cfg      config.Config
	metrics  *metrics.Metrics
	server   *telemetry.MetricsServer
	closeLog func() error
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tscbench",
		Short: "Time short code fragments with the hardware timestamp counter",
		Long: `tscbench measures the latency of very short code fragments using the
processor timestamp counter behind a configurable instruction-ordering barrier.
It calibrates its own overhead, filters out anomalous samples and can detect
migration between cores during a measurement.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./tscbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also append JSON logs to this file")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address (host:port)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newCompareCmd(a),
		newCalibrateCmd(a),
		newMeasureCmd(a),
		newInfoCmd(),
		newWorkloadsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	// Wrap Execute in panic recovery for graceful shutdown
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'tscbench --help' for usage.")
		exit(1)
	}
}

// initConfig binds the flags of the command being run, reads the config file
// and environment, then sets up logging and metrics.
func (a *app) initConfig(cmd *cobra.Command) error {
	bindFlags(cmd.Flags())

	if err := config.Load(a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.FromViper()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.closeLog = telemetry.InitLogger(cfg.Verbose, cfg.LogFile)

	a.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	if cfg.Metrics.Addr != "" {
		a.server, err = telemetry.StartMetricsServer(cfg.Metrics.Addr, a.metrics.Handler())
		if err != nil {
			slog.Warn("Failed to start metrics server", "addr", cfg.Metrics.Addr, "error", err)
		}
	}
	return nil
}

func (a *app) shutdown() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	if a.closeLog != nil {
		return a.closeLog()
	}
	return nil
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"verbose":              "verbose",
	"log-file":             "log_file",
	"metrics-addr":         "metrics.addr",
	"workload":             "workload",
	"samples":              "samples",
	"core":                 "core",
	"warmup":               "warmup",
	"max-attempts":         "max_attempts",
	"barrier":              "barrier",
	"migration-check":      "migration_check",
	"calibration-cycles":   "calibration.cycles",
	"stabilized-threshold": "calibration.stabilized_threshold",
	"calibration-attempts": "calibration.max_attempts",
	"tune":                 "tune",
}

// bindFlags binds the flags of the running command only, so flags with the
// same name on sibling commands do not shadow each other.
func bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	})
}
