package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"tabular-mapper/options"
)

// DefaultVersion is the config version written by Marshal when none is set.
const DefaultVersion = "1"

// Config selects how records are turned into a table.
type Config struct {
	Version       string        `yaml:"version"`
	ExpandArrays  bool          `yaml:"expand_arrays"`
	ExpandStructs bool          `yaml:"expand_structs"`
	SampleSize    int           `yaml:"sample_size"`       // 0 infers from every record
	Workers       int           `yaml:"workers"`           // 0 uses GOMAXPROCS
	Columns       StringOrArray `yaml:"columns,omitempty"` // projection by column name, all columns when empty
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the config used when no file is given.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)

	return &cfg
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var err error

	if c.Version != DefaultVersion {
		err = multierr.Append(err, fmt.Errorf("unsupported config version %q", c.Version))
	}

	if c.SampleSize < 0 {
		err = multierr.Append(err, fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize))
	}

	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	return err
}

// Flags converts the expansion settings to options.
func (c *Config) Flags() options.FlagEnum {
	return options.FlagNone.
		With(options.FlagExpandArrays, c.ExpandArrays).
		With(options.FlagExpandStructs, c.ExpandStructs)
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
