// Package runconfig loads the YAML run parameters that drive
// cmd/evolimoc and cmd/evolimo-run, in the same
// read-file-then-yaml.Unmarshal style as the teacher's
// core.LoadProgramFileFromYAML.
package runconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level run file: which definitions to compile
// and/or run, for how long, and where generated artifacts land.
type Config struct {
	Seed        int64    `yaml:"seed"`
	Steps       int64    `yaml:"steps"`
	Definitions []string `yaml:"definitions"`
	OutputDir   string   `yaml:"output_dir"`
	LogLevel    string   `yaml:"log_level"`
}

// Default returns the zero-value config with its documented defaults
// filled in.
func Default() Config {
	return Config{
		Seed:      0,
		Steps:     100,
		OutputDir: "_gen",
		LogLevel:  "info",
	}
}

// Load reads and parses a YAML run config from path, starting from
// Default() so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("runconfig.Load: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("runconfig.Load: parsing %s: %w", path, err)
	}

	if cfg.Steps <= 0 {
		return Config{}, fmt.Errorf("runconfig.Load: steps must be positive, got %d", cfg.Steps)
	}

	return cfg, nil
}
