package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Match strategies.
const (
	StrategyPairwise = "pairwise"
	StrategyIndexed  = "indexed"
)

// Cache snapshot backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Scan contains discovery and matching settings.
type Scan struct {
	Extensions []string `toml:"extensions"`
	Threshold  float64  `toml:"threshold"`
	Strategy   string   `toml:"strategy"`
	Workers    int      `toml:"workers"`
	ResultLog  string   `toml:"result_log"`
}

// FPCalc contains settings for the external fingerprinting tool.
type FPCalc struct {
	Binary         string `toml:"binary"`
	LengthSeconds  int    `toml:"length_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache contains settings for the persisted fingerprint store.
type Cache struct {
	Backend      string `toml:"backend"`
	FileName     string `toml:"file_name"`
	SaveInterval int    `toml:"save_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for dupefinder.
//
// Configuration sections by subsystem:
//   - Scan: extension allow-list, match threshold and strategy, result log
//   - FPCalc: fingerprinting binary, analysis window, per-file timeout
//   - Cache: snapshot backend, file name, periodic save interval
//   - Logging: log format, level, and optional log directory
type Config struct {
	Scan    Scan    `toml:"scan"`
	FPCalc  FPCalc  `toml:"fpcalc"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dupefinder/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dupefinder.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// CachePath resolves the fingerprint store location for a scanned folder.
// Relative names live inside the folder; absolute names are used as-is.
func (c *Config) CachePath(folder string) string {
	return resolveInFolder(folder, c.Cache.FileName)
}

// ResultLogPath resolves the result log location for a scanned folder.
func (c *Config) ResultLogPath(folder string) string {
	return resolveInFolder(folder, c.Scan.ResultLog)
}

// FingerprintTimeout returns the per-file fingerprinting timeout.
func (c *Config) FingerprintTimeout() time.Duration {
	return time.Duration(c.FPCalc.TimeoutSeconds) * time.Second
}

func resolveInFolder(folder, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(folder, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// Sample returns the annotated sample configuration.
func Sample() string { return sampleConfig }

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
