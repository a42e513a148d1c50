package election

import (
	"strconv"
	"strings"
)

// Config controls which configuration is elected on and how fast the viewer advances it.
type Config struct {
	Shape string
	Size  int
	Fill  float64
	Seed  int64

	// Steps is the number of particle activations per tick.
	Steps  int
	Margin int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Shape:  "blob",
		Size:   12,
		Fill:   0.6,
		Seed:   1,
		Steps:  8,
		Margin: 2,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["shape"]; ok && strings.TrimSpace(v) != "" {
		c.Shape = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := cfg["size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Size = parsed
		}
	}
	if v, ok := cfg["fill"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed <= 1 {
			c.Fill = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["steps"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Steps = parsed
		}
	}
	if v, ok := cfg["margin"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Margin = parsed
		}
	}
	return c
}
