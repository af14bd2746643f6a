package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.Tolerance < 0 {
		return errors.New("alignment.tolerance must be >= 0")
	}
	if c.Alignment.Tolerance > MaxTolerance {
		return fmt.Errorf("alignment.tolerance must be <= %d", MaxTolerance)
	}
	threshold := c.Alignment.PixelThreshold
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return errors.New("alignment.pixel_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
