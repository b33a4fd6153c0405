// Package config loads tscbench settings from flags, environment, a .env
// file and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tscbench/internal/benchmark"
	"tscbench/internal/calibration"
	"tscbench/internal/clock"
	"tscbench/internal/tuning"
)

const EnvPrefix = "TSCBENCH"

// Load initializes the configuration from file and environment variables.
// A missing config.yaml in the working directory is not an error; a missing
// explicit cfgFile is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("tscbench")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// SetDefaults registers the default for every key.
func SetDefaults() {
	viper.SetDefault("workload", "arithmetic")
	viper.SetDefault("samples", benchmark.DefaultSampleCount)
	viper.SetDefault("core", benchmark.DefaultTargetCore)
	viper.SetDefault("warmup", benchmark.DefaultWarmupCount)
	viper.SetDefault("max_attempts", 0)
	viper.SetDefault("barrier", clock.SingleSerializeBoundary.String())
	viper.SetDefault("migration_check", false)
	viper.SetDefault("calibration.cycles", calibration.DefaultCycles)
	viper.SetDefault("calibration.stabilized_threshold", 0)
	viper.SetDefault("calibration.max_attempts", 0)
	viper.SetDefault("tune", true)
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("metrics.addr", "")
}

// Config is the typed view of the loaded configuration.
type Config struct {
	Workload       string            `mapstructure:"workload"`
	Samples        int               `mapstructure:"samples"`
	Core           int               `mapstructure:"core"`
	Warmup         int               `mapstructure:"warmup"`
	MaxAttempts    int               `mapstructure:"max_attempts"`
	Barrier        string            `mapstructure:"barrier"`
	MigrationCheck bool              `mapstructure:"migration_check"`
	Calibration    CalibrationConfig `mapstructure:"calibration"`
	Tune           bool              `mapstructure:"tune"`
	Verbose        bool              `mapstructure:"verbose"`
	LogFile        string            `mapstructure:"log_file"`
	Metrics        MetricsConfig     `mapstructure:"metrics"`
}

type CalibrationConfig struct {
	Cycles              int `mapstructure:"cycles"`
	StabilizedThreshold int `mapstructure:"stabilized_threshold"`
	MaxAttempts         int `mapstructure:"max_attempts"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// FromViper validates the loaded configuration and decodes it.
func FromViper() (Config, error) {
	if err := ValidateConfig(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Settings returns the per-run settings.
func (c Config) Settings() benchmark.Settings {
	return benchmark.Settings{
		SampleCount: c.Samples,
		TargetCore:  c.Core,
		WarmupCount: c.Warmup,
		MaxAttempts: c.MaxAttempts,
	}
}

// RunnerOptions returns the construction options the configuration implies.
func (c Config) RunnerOptions() ([]benchmark.Option, error) {
	b, err := clock.ParseBarrier(c.Barrier)
	if err != nil {
		return nil, err
	}
	opts := []benchmark.Option{
		benchmark.WithBarrier(b),
		benchmark.WithMigrationCheck(c.MigrationCheck),
		benchmark.WithCalibrationCycles(c.Calibration.Cycles),
		benchmark.WithStabilizedCalibration(c.Calibration.StabilizedThreshold),
		benchmark.WithCalibrationAttempts(c.Calibration.MaxAttempts),
	}
	if !c.Tune {
		opts = append(opts, benchmark.WithTuner(tuning.Skip{}))
	}
	return opts, nil
}
