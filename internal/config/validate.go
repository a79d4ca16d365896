package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateFPCalc(); err != nil {
		return err
	}
	return c.validateCache()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one audio extension")
	}
	if c.Scan.Threshold <= 0 || c.Scan.Threshold > 1 {
		return fmt.Errorf("scan.threshold must be in (0, 1]; got %v", c.Scan.Threshold)
	}
	switch c.Scan.Strategy {
	case StrategyPairwise, StrategyIndexed:
	default:
		return fmt.Errorf("scan.strategy: unsupported value %q (want %q or %q)", c.Scan.Strategy, StrategyPairwise, StrategyIndexed)
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1; got %d", c.Scan.Workers)
	}
	return nil
}

func (c *Config) validateFPCalc() error {
	if c.FPCalc.LengthSeconds <= 0 {
		return fmt.Errorf("fpcalc.length_seconds must be positive; got %d", c.FPCalc.LengthSeconds)
	}
	if c.FPCalc.TimeoutSeconds <= 0 {
		return fmt.Errorf("fpcalc.timeout_seconds must be positive; got %d", c.FPCalc.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want %q or %q)", c.Cache.Backend, BackendJSON, BackendSQLite)
	}
	if c.Cache.SaveInterval <= 0 {
		return fmt.Errorf("cache.save_interval must be positive; got %d", c.Cache.SaveInterval)
	}
	return nil
}
