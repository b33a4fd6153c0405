package config

import (
	"fmt"
	"net"

	"github.com/spf13/viper"

	"tscbench/internal/clock"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	if samples := viper.GetInt("samples"); samples < 1 {
		errors = append(errors, fmt.Sprintf("samples must be positive, got: %d", samples))
	}

	for _, key := range []string{"warmup", "max_attempts", "calibration.stabilized_threshold", "calibration.max_attempts"} {
		if v := viper.GetInt(key); v < 0 {
			errors = append(errors, fmt.Sprintf("%s must not be negative, got: %d", key, v))
		}
	}

	if cycles := viper.GetInt("calibration.cycles"); cycles < 1 {
		errors = append(errors, fmt.Sprintf("calibration.cycles must be positive, got: %d", cycles))
	}

	if _, err := clock.ParseBarrier(viper.GetString("barrier")); err != nil {
		errors = append(errors, err.Error())
	}

	if addr := viper.GetString("metrics.addr"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errors = append(errors, fmt.Sprintf("metrics.addr must be host:port, got: %q", addr))
		}
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}
