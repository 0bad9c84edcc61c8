package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the runtime knobs of the engine and its sinks.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// TraceBufferSize caps the number of buffered trace entries per
	// streaming client before the slowest client is dropped.
	TraceBufferSize int `yaml:"traceBufferSize"`

	// TraceStreamAddr, when set, enables the websocket trace stream on
	// that listen address (e.g. ":8087").
	TraceStreamAddr string `yaml:"traceStreamAddr"`

	// Metrics toggles Prometheus collector registration.
	Metrics bool `yaml:"metrics"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:        "info",
		TraceBufferSize: 256,
		Metrics:         true,
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.TraceBufferSize <= 0 {
		cfg.TraceBufferSize = Default().TraceBufferSize
	}
	return cfg, nil
}
