package config

import (
	"os"
	"strconv"

	"churnboard/internal/errors"
)

// DefaultDataFile is the dataset the dashboard reads when DATA_FILE is unset.
const DefaultDataFile = "WA_Fn-UseC_-Telco-Customer-Churn.csv"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `mapstructure:"port" yaml:"port"`
	GinMode string `mapstructure:"gin_mode" yaml:"gin_mode"`
}

// DataConfig holds dataset and presentation sizing settings
type DataConfig struct {
	File          string `mapstructure:"file" yaml:"file"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string `mapstructure:"port" yaml:"port"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:          getEnvOrDefault("DATA_FILE", DefaultDataFile),
		PreviewRows:   getEnvIntOrDefault("PREVIEW_ROWS", 10),
		HistogramBins: getEnvIntOrDefault("HISTOGRAM_BINS", 30),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("data file is required")
	}
	if config.Data.PreviewRows <= 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be positive")
	}
	if config.Data.HistogramBins <= 0 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
