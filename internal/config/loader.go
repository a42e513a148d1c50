package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Loader layers defaults, an optional file and environment overrides, then validates.
type Loader struct {
	searchPaths []string
	envPrefix   string
	defaults    *Config
	lookupEnv   func(string) (string, bool)
}

// NewLoader creates a loader with the standard search paths and AMOEBOT env prefix.
func NewLoader() *Loader {
	paths := []string{".", "./config"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".amoebot"))
	}
	return &Loader{
		searchPaths: paths,
		envPrefix:   "AMOEBOT",
		defaults:    DefaultConfig(),
		lookupEnv:   os.LookupEnv,
	}
}

// SetSearchPaths sets the directories searched when no file is named.
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaults replaces the base configuration.
func (l *Loader) SetDefaults(c *Config) *Loader {
	if c != nil {
		l.defaults = c
	}
	return l
}

// Load reads filename, or the first config file found on the search paths when filename
// is empty. A missing discovered file is not an error.
func (l *Loader) Load(filename string) (*Config, error) {
	cfg := l.defaults.Clone()

	if filename == "" {
		found, err := l.findConfigFile()
		switch {
		case errors.Is(err, ErrConfigFileNotFound):
		case err != nil:
			return nil, err
		default:
			filename = found
		}
	}
	if filename != "" {
		if err := l.loadFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", filename, err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func formatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
}

func (l *Loader) findConfigFile() (string, error) {
	names := []string{"amoebot.yaml", "amoebot.yml", "amoebot.json"}
	for _, dir := range l.searchPaths {
		for _, name := range names {
			full := filepath.Join(dir, name)
			if _, err := os.Stat(full); err == nil {
				return full, nil
			}
		}
	}
	return "", ErrConfigFileNotFound
}

// loadFile decodes filename over cfg, so keys absent from the file keep their values.
func (l *Loader) loadFile(filename string, cfg *Config) error {
	format, err := formatOf(filename)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}
	return nil
}

func (l *Loader) env(key string) (string, bool) {
	v, ok := l.lookupEnv(l.envPrefix + "_" + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// loadFromEnv applies PREFIX_* overrides.
func (l *Loader) loadFromEnv(cfg *Config) error {
	if v, ok := l.env("SHAPE"); ok {
		cfg.Trial.Shape = strings.ToLower(v)
	}
	if v, ok := l.env("SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("SIZE", v)
		}
		cfg.Trial.Size = n
	}
	if v, ok := l.env("FILL"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("FILL", v)
		}
		cfg.Trial.Fill = f
	}
	if v, ok := l.env("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("SEED", v)
		}
		cfg.Trial.Seed = n
	}
	if v, ok := l.env("BUDGET"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("BUDGET", v)
		}
		cfg.Trial.Budget = n
	}
	if v, ok := l.env("SWEEP_SHAPES"); ok {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, strings.ToLower(s))
			}
		}
		cfg.Sweep.Shapes = list
	}
	if v, ok := l.env("SWEEP_SEEDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("SWEEP_SEEDS", v)
		}
		cfg.Sweep.Seeds = n
	}
	if v, ok := l.env("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("WORKERS", v)
		}
		cfg.Sweep.Workers = n
	}
	if v, ok := l.env("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := l.env("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := l.env("DB"); ok {
		cfg.Store.Path = v
	}
	return nil
}

func envError(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrEnvironmentVar, key, value)
}
