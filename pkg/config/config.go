// Package config loads the YAML configuration file of the floyd command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDepth = 256
	DefaultLogLevel = "info"
	DefaultLogSize  = 100
)

type Config struct {
	// Prelude lists files whose text precedes every program.
	Prelude  []string `yaml:"prelude"`
	MaxDepth int      `yaml:"max_depth"`
	LogLevel string   `yaml:"log_level"`
	NoColor  bool     `yaml:"no_color"`
	// LogFile, when set, receives log output in place of stderr and is
	// rotated once it reaches LogMaxSize megabytes.
	LogFile       string `yaml:"log_file"`
	LogMaxSize    int    `yaml:"log_max_size"`
	LogMaxBackups int    `yaml:"log_max_backups"`
}

func Default() *Config {
	return &Config{
		MaxDepth:   DefaultMaxDepth,
		LogLevel:   DefaultLogLevel,
		LogMaxSize: DefaultLogSize,
	}
}

// Load reads the configuration file at path.  Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a configuration document.  Unknown keys are
// an error.
func Parse(b []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive: %d", c.MaxDepth)
	}
	if c.LogMaxSize <= 0 {
		return fmt.Errorf("log_max_size must be positive: %d", c.LogMaxSize)
	}
	if c.LogMaxBackups < 0 {
		return fmt.Errorf("log_max_backups must not be negative: %d", c.LogMaxBackups)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the logging level named by LogLevel.
func (c *Config) Level() (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
