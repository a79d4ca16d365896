package dedupe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"dupefinder/internal/fingerprint"
	"dupefinder/internal/fpstore"
	"dupefinder/internal/logging"
)

// acquisition drives the fingerprinting phase. Store mutation, counters,
// periodic saves, and reporter calls all happen under mu.
type acquisition struct {
	runner   *Runner
	store    *fpstore.Store
	provider *fingerprint.Provider
	logger   *slog.Logger
	interval int

	mu         sync.Mutex
	cached     int
	fresh      int
	misses     int
	saveErrors int
}

func newAcquisition(r *Runner, store *fpstore.Store, logger *slog.Logger) *acquisition {
	return &acquisition{
		runner:   r,
		store:    store,
		provider: fingerprint.NewProvider(r.tool, logger),
		logger:   logger,
		interval: r.cfg.Cache.SaveInterval,
	}
}

func (a *acquisition) run(ctx context.Context, files []string) error {
	workers := a.runner.cfg.Scan.Workers
	if workers <= 1 || len(files) < 2 {
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.acquire(ctx, path)
		}
		return ctx.Err()
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() { a.acquire(ctx, path) })
	}
	p.Wait()
	return ctx.Err()
}

func (a *acquisition) acquire(ctx context.Context, path string) {
	rec, hit, err := a.provider.Acquire(ctx, path, a.store)

	a.mu.Lock()
	defer a.mu.Unlock()

	reporter := a.runner.reporter
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		a.misses++
		reporter.Skipped(path, err)
		logging.WarnWithContext(a.logger, "could not fingerprint file", "fingerprint_miss",
			logging.Path(path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file decodes with fpcalc"),
			logging.String(logging.FieldImpact, "file is excluded from matching this run"))
	case hit:
		a.cached++
		reporter.Cached(path)
	default:
		a.store.Put(path, rec)
		a.fresh++
		reporter.Fingerprinted(path)
		if a.interval > 0 && a.fresh%a.interval == 0 {
			a.saveLocked(false)
		}
	}
}

func (a *acquisition) finalSave() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveLocked(true)
}

func (a *acquisition) saveLocked(final bool) error {
	if err := a.store.Save(); err != nil {
		if !final {
			a.saveErrors++
		}
		a.runner.reporter.CacheSaveFailed(err)
		return err
	}
	a.runner.reporter.CacheSaved(a.fresh, final)
	return nil
}
