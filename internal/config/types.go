// Package config loads the settings shared by the election tools from YAML or JSON
// files with environment overrides, and can watch a file for changes.
package config

import (
	"slices"
	"strings"

	"amoebot/internal/shapes"

	"go.uber.org/zap/zapcore"
)

// Config is the root configuration.
type Config struct {
	Trial TrialConfig `yaml:"trial" json:"trial"`
	Sweep SweepConfig `yaml:"sweep" json:"sweep"`
	Log   LogConfig   `yaml:"log" json:"log"`
	Store StoreConfig `yaml:"store" json:"store"`
}

// TrialConfig describes one election run.
type TrialConfig struct {
	Shape string  `yaml:"shape" json:"shape"`
	Size  int     `yaml:"size" json:"size"`
	Fill  float64 `yaml:"fill" json:"fill"`
	Seed  int64   `yaml:"seed" json:"seed"`
	// Budget caps activations; zero means unlimited.
	Budget int64 `yaml:"budget" json:"budget"`
}

// SweepConfig describes a batch of trials over shapes and seeds.
type SweepConfig struct {
	Shapes     []string `yaml:"shapes" json:"shapes"`
	Seeds      int      `yaml:"seeds" json:"seeds"`
	SeedOffset int64    `yaml:"seed_offset" json:"seed_offset"`
	Workers    int      `yaml:"workers" json:"workers"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StoreConfig locates the trial ledger.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		Trial: TrialConfig{
			Shape:  "blob",
			Size:   8,
			Fill:   0.6,
			Seed:   1,
			Budget: 5_000_000,
		},
		Sweep: SweepConfig{
			Shapes:  []string{"line", "triangle", "hexagon", "ring", "blob"},
			Seeds:   10,
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Path: "amoebot.db",
		},
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := validateShape(c.Trial.Shape); err != nil {
		return err
	}
	if c.Trial.Size <= 0 {
		return ErrInvalidSize
	}
	if c.Trial.Fill <= 0 || c.Trial.Fill > 1 {
		return ErrInvalidFill
	}
	if c.Trial.Budget < 0 {
		return ErrInvalidBudget
	}

	for _, s := range c.Sweep.Shapes {
		if err := validateShape(s); err != nil {
			return err
		}
	}
	if c.Sweep.Seeds <= 0 {
		return ErrInvalidSeeds
	}
	if c.Sweep.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return ErrInvalidLogLevel
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return ErrInvalidLogFormat
	}
	return nil
}

func validateShape(name string) error {
	if !slices.Contains(shapes.Names(), strings.ToLower(name)) {
		return ErrInvalidShape
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Sweep.Shapes = slices.Clone(c.Sweep.Shapes)
	return &out
}
