// Package config loads the tunables that govern how a Discarder run
// balances exhaustive enumeration against Monte Carlo sampling: the
// enumeration threshold, worker count, chunk size, and log level.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete discarder configuration.
type Config struct {
	Engine EngineSettings `hcl:"engine,block"`
}

// EngineSettings tunes the strategy selector and Monte Carlo driver. The
// spec treats these as tunables, not contract: the threshold of 30,000
// combinations is a heuristic, not a fixed boundary.
type EngineSettings struct {
	EnumerationThreshold int    `hcl:"enumeration_threshold,optional"`
	Threads              int    `hcl:"threads,optional"`
	ChunkSize            int    `hcl:"chunk_size,optional"`
	LogLevel             string `hcl:"log_level,optional"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Engine: EngineSettings{
			EnumerationThreshold: 30_000,
			Threads:              0, // 0 means runtime.NumCPU()
			ChunkSize:            1_000_000,
			LogLevel:             "info",
		},
	}
}

// Load reads configuration from an HCL file at filename, falling back to
// Default() if the file does not exist. Any field left unset (zero
// value) in the file is filled in from Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse %s: %s", filename, diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to decode %s: %s", filename, diags.Error())
	}

	defaults := Default()
	if cfg.Engine.EnumerationThreshold == 0 {
		cfg.Engine.EnumerationThreshold = defaults.Engine.EnumerationThreshold
	}
	if cfg.Engine.ChunkSize == 0 {
		cfg.Engine.ChunkSize = defaults.Engine.ChunkSize
	}
	if cfg.Engine.LogLevel == "" {
		cfg.Engine.LogLevel = defaults.Engine.LogLevel
	}

	return &cfg, nil
}

// Validate reports whether c describes a usable configuration.
func (c *Config) Validate() error {
	if c.Engine.EnumerationThreshold <= 0 {
		return fmt.Errorf("config: enumeration_threshold must be positive")
	}
	if c.Engine.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive")
	}
	if c.Engine.Threads < 0 {
		return fmt.Errorf("config: threads cannot be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Engine.LogLevel] {
		return fmt.Errorf("config: invalid log level %q", c.Engine.LogLevel)
	}

	return nil
}
