package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file.
const (
	EnvRedisURL = "FLO_REDIS_URL"
	EnvLogLevel = "FLO_LOG_LEVEL"
	EnvRunner   = "FLO_RUNNER"
)

// Runner kinds accepted by Config.Runner.
const (
	RunnerThread  = "thread"
	RunnerProcess = "process"
	RunnerFiber   = "fiber"
)

// Duration reads "1.5s"-style strings from YAML and JSON.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.parse(value.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Redis configures the stream edges.
type Redis struct {
	URL   string   `yaml:"url" json:"url"`
	Block Duration `yaml:"block" json:"block"`
	Count int64    `yaml:"count" json:"count"`
}

// Config is the configuration of the flo CLI.
type Config struct {
	Redis       Redis    `yaml:"redis" json:"redis"`
	Runner      string   `yaml:"runner" json:"runner"`
	Timeout     Duration `yaml:"timeout" json:"timeout"`
	LogLevel    string   `yaml:"log_level" json:"log_level"`
	MetricsAddr string   `yaml:"metrics_addr" json:"metrics_addr"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Runner:   RunnerThread,
		LogLevel: "info",
	}
}

// Load reads a YAML or JSON file (chosen by extension, YAML by default) over
// the defaults, then applies the environment overrides. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if strings.ToLower(filepath.Ext(path)) == ".json" {
				err = json.Unmarshal(data, &cfg)
			} else {
				err = yaml.Unmarshal(data, &cfg)
			}
			if err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvRedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvRunner); v != "" {
		cfg.Runner = v
	}
	return cfg, cfg.Validate()
}

// Validate checks the runner kind and numeric bounds.
func (c Config) Validate() error {
	switch c.Runner {
	case RunnerThread, RunnerProcess, RunnerFiber:
	default:
		return fmt.Errorf("unknown runner %q (want %s, %s or %s)", c.Runner, RunnerThread, RunnerProcess, RunnerFiber)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Redis.Count < 0 {
		return errors.New("redis.count must not be negative")
	}
	return nil
}
