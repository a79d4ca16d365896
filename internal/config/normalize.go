package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeScan()
	c.normalizeFPCalc()
	c.normalizeCache()
	return c.normalizeLogging()
}

func (c *Config) normalizeScan() {
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Scan.Extensions = exts
	c.Scan.Strategy = strings.ToLower(strings.TrimSpace(c.Scan.Strategy))
	if c.Scan.Strategy == "" {
		c.Scan.Strategy = defaultStrategy
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaultWorkers
	}
	c.Scan.ResultLog = strings.TrimSpace(c.Scan.ResultLog)
	if c.Scan.ResultLog == "" {
		c.Scan.ResultLog = defaultResultLog
	}
}

func (c *Config) normalizeFPCalc() {
	c.FPCalc.Binary = strings.TrimSpace(c.FPCalc.Binary)
	if c.FPCalc.Binary == "" {
		if value, ok := os.LookupEnv("DUPEFINDER_FPCALC"); ok && strings.TrimSpace(value) != "" {
			c.FPCalc.Binary = strings.TrimSpace(value)
		} else {
			c.FPCalc.Binary = defaultFPCalcBinary
		}
	}
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	c.Cache.FileName = strings.TrimSpace(c.Cache.FileName)
	if c.Cache.FileName == "" {
		if c.Cache.Backend == BackendSQLite {
			c.Cache.FileName = "fp.db"
		} else {
			c.Cache.FileName = defaultCacheFileName
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
