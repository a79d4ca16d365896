package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"dupefinder/internal/fpcalc"
	"dupefinder/internal/fpstore"
	"dupefinder/internal/logging"
)

// Reason classifies why a fingerprint could not be produced.
type Reason string

const (
	ReasonLaunch     Reason = "launch"
	ReasonExit       Reason = "exit"
	ReasonTimeout    Reason = "timeout"
	ReasonIncomplete Reason = "incomplete"
	ReasonCanceled   Reason = "canceled"
)

// MissError reports a file for which no fingerprint is available.
type MissError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *MissError) Error() string {
	return fmt.Sprintf("fingerprint %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *MissError) Unwrap() error { return e.Err }

// Fingerprinter computes a fingerprint for one file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (fpcalc.Result, error)
}

// Cache is the read side of the fingerprint store.
type Cache interface {
	Get(path string) (fpstore.Record, bool)
}

// Provider resolves records from a cache or a Fingerprinter.
type Provider struct {
	tool   Fingerprinter
	logger *slog.Logger
}

// NewProvider wraps tool.
func NewProvider(tool Fingerprinter, logger *slog.Logger) *Provider {
	return &Provider{tool: tool, logger: logging.NewComponentLogger(logger, "fingerprint")}
}

// Acquire returns the record for path. hit is true when it came from cache.
// On a miss the tool runs once and the result is returned without being
// stored; failures are returned as *MissError.
func (p *Provider) Acquire(ctx context.Context, path string, cache Cache) (fpstore.Record, bool, error) {
	if cache != nil {
		if rec, ok := cache.Get(path); ok {
			return rec, true, nil
		}
	}

	result, err := p.tool.Fingerprint(ctx, path)
	if err != nil {
		miss := &MissError{Path: path, Reason: classify(ctx, err), Err: err}
		p.logger.Debug("fingerprint unavailable",
			logging.Path(path),
			logging.String("reason", string(miss.Reason)),
			logging.Error(err))
		return fpstore.Record{}, false, miss
	}
	if result.Fingerprint == "" {
		return fpstore.Record{}, false, &MissError{Path: path, Reason: ReasonIncomplete, Err: fpcalc.ErrIncompleteOutput}
	}

	p.logger.Debug("fingerprint computed",
		logging.Path(path),
		logging.Int("duration_seconds", result.Duration))
	return fpstore.Record{Duration: result.Duration, Fingerprint: result.Fingerprint}, false, nil
}

func classify(ctx context.Context, err error) Reason {
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, fpcalc.ErrTimeout):
		return ReasonTimeout
	case ctx.Err() != nil:
		return ReasonCanceled
	case errors.Is(err, fpcalc.ErrIncompleteOutput):
		return ReasonIncomplete
	case errors.As(err, &exitErr):
		return ReasonExit
	default:
		return ReasonLaunch
	}
}
