package config

import (
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"churnboard/internal/errors"
)

// envBindings maps config keys to the environment variables Load reads.
var envBindings = map[string]string{
	"server.port":         "PORT",
	"server.gin_mode":     "GIN_MODE",
	"data.file":           "DATA_FILE",
	"data.preview_rows":   "PREVIEW_ROWS",
	"data.histogram_bins": "HISTOGRAM_BINS",
	"profiling.port":      "PPROF_PORT",
	"profiling.enabled":   "PPROF_ENABLED",
}

// LoadFile reads a YAML config file and layers the environment on top.
// Precedence: env > file > defaults. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	v := viper.New()
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("data.file", DefaultDataFile)
	v.SetDefault("data.preview_rows", 10)
	v.SetDefault("data.histogram_bins", 30)
	v.SetDefault("profiling.port", "6060")
	v.SetDefault("profiling.enabled", false)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "read config file %s", path)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "decode config file %s", path)
	}
	if err := validateConfig(&config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &config, nil
}

// YAML renders the effective configuration in the LoadFile format.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return b, nil
}
