package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration for pwvolume.
//
// The file is optional: every field has a working default, and the handful
// of flags override it for one-off invocations. Defaults and validation are
// centralized here so the rest of the code can assume a well-formed config.
type Config struct {
	// PipeWire tool invocation
	Tools ToolsConfig `yaml:"tools"`

	// Bounded waits
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type ToolsConfig struct {
	DumpBin string `yaml:"dump_bin"` // registry/parameter monitor tool
	CliBin  string `yaml:"cli_bin"`  // set-param dispatch tool
	Remote  string `yaml:"remote"`   // optional non-default PipeWire instance
}

type TimeoutsConfig struct {
	StageMS int `yaml:"stage_ms"` // per-stage deadline (resolve, baseline, confirm)
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const defaultStageTimeoutMS = 2000

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Tools: ToolsConfig{
			DumpBin: "pw-dump",
			CliBin:  "pw-cli",
		},
		Timeouts: TimeoutsConfig{
			StageMS: defaultStageTimeoutMS,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// defaultConfigPath resolves the conventional config location.
func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pwvolume", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pwvolume", "config.yaml")
}

// LoadConfig reads the config file at path, or the conventional location
// when path is empty. A missing file at the conventional location is not an
// error; an explicitly given path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Tools.DumpBin == "" {
		return errors.New("tools.dump_bin must not be empty")
	}
	if c.Tools.CliBin == "" {
		return errors.New("tools.cli_bin must not be empty")
	}
	if c.Timeouts.StageMS <= 0 {
		return errors.New("timeouts.stage_ms must be positive")
	}
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func (c Config) stageTimeout() time.Duration {
	return time.Duration(c.Timeouts.StageMS) * time.Millisecond
}
