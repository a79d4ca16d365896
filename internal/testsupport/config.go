package testsupport

import (
	"testing"

	"dupefinder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a default config and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFPCalc points the config at the given fpcalc binary.
func WithFPCalc(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.FPCalc.Binary = binary
	}
}

// WithThreshold overrides the match threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Threshold = threshold
	}
}

// WithSaveInterval overrides the periodic save interval.
func WithSaveInterval(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.SaveInterval = n
	}
}

// WithStrategy overrides the match strategy.
func WithStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Strategy = strategy
	}
}

// WithBackend overrides the cache backend and file name.
func WithBackend(backend, fileName string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		b.cfg.Cache.FileName = fileName
	}
}

// WithWorkers overrides the fingerprinting worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.Workers = n
	}
}
