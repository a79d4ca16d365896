package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"dupefinder/internal/config"
	"dupefinder/internal/deps"
	"dupefinder/internal/discovery"
	"dupefinder/internal/fingerprint"
	"dupefinder/internal/fpcalc"
	"dupefinder/internal/fpstore"
	"dupefinder/internal/logging"
	"dupefinder/internal/matcher"
	"dupefinder/internal/preflight"
	"dupefinder/internal/resultlog"
	"dupefinder/internal/similarity"
)

// Options configures a Runner.
type Options struct {
	Config   *config.Config
	Reporter Reporter
	Logger   *slog.Logger
	// Fingerprinter replaces the fpcalc client; nil resolves fpcalc from Config.
	Fingerprinter fingerprint.Fingerprinter
	// Now stamps the result log header; nil means time.Now.
	Now func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID       string          `json:"run_id"`
	Folder      string          `json:"folder"`
	CachePath   string          `json:"cache_path"`
	LogPath     string          `json:"log_path"`
	Files       int             `json:"files"`
	Removed     int             `json:"removed"`
	Cached      int             `json:"cached"`
	New         int             `json:"new"`
	Misses      int             `json:"misses"`
	SaveErrors  int             `json:"save_errors"`
	Entries     int             `json:"entries"`
	Pairs       int             `json:"pairs"`
	Comparisons int             `json:"comparisons"`
	Matches     []matcher.Match `json:"matches"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// Runner executes duplicate scans.
type Runner struct {
	cfg      *config.Config
	tool     fingerprint.Fingerprinter
	reporter Reporter
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a Runner. When no Fingerprinter is supplied the configured
// fpcalc binary must resolve; otherwise a *deps.MissingBinaryError is
// returned and no run can start.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("dedupe: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewComponentLogger(opts.Logger, "dedupe")
	tool := opts.Fingerprinter
	if tool == nil {
		resolved, err := preflight.RequireFingerprinter(opts.Config)
		if err != nil {
			hint := "install chromaprint or set fpcalc.binary"
			var missing *deps.MissingBinaryError
			if errors.As(err, &missing) && missing.Hint != "" {
				hint = missing.Hint
			}
			logging.ErrorWithContext(logger, "fingerprinting tool not available", "fpcalc_missing",
				logging.Error(err),
				logging.String("binary", opts.Config.FPCalc.Binary),
				logging.String(logging.FieldErrorHint, hint))
			return nil, err
		}
		tool = fpcalc.New(resolved, opts.Config.FPCalc.LengthSeconds, opts.Config.FingerprintTimeout())
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		cfg:      opts.Config,
		tool:     tool,
		reporter: reporter,
		logger:   logger,
		now:      now,
	}, nil
}

// Run scans folder for near-duplicate audio files. Per-file failures and
// cache I/O failures are reported and do not stop the run; an error is
// returned only when the run cannot continue.
func (r *Runner) Run(ctx context.Context, folder string) (Summary, error) {
	started := time.Now()
	summary := Summary{
		RunID:     uuid.NewString(),
		Folder:    folder,
		CachePath: r.cfg.CachePath(folder),
		LogPath:   r.cfg.ResultLogPath(folder),
	}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	info, err := os.Stat(folder)
	if err != nil {
		return summary, fmt.Errorf("scan folder: %w", err)
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("scan folder %s: not a directory", folder)
	}

	lock, err := fpstore.AcquireLock(summary.CachePath)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release cache lock failed", logging.Error(err))
		}
	}()

	store, err := r.openStore(summary.CachePath, logger)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Debug("close cache backend failed", logging.Error(err))
		}
	}()

	removed := store.Reconcile()
	for _, path := range removed {
		r.reporter.StaleRemoved(path)
	}
	summary.Removed = len(removed)
	r.reporter.Reconciled(len(removed))

	files, err := discovery.New(r.cfg.Scan.Extensions, logger).Find(ctx, folder)
	if err != nil {
		return summary, err
	}
	summary.Files = len(files)
	r.reporter.FilesFound(len(files))
	logger.Info("fingerprinting started",
		logging.String(logging.FieldEventType, "acquire_start"),
		logging.String("folder", folder),
		logging.Int("files", len(files)),
		logging.Int("cached_entries", store.Len()),
		logging.Int("workers", r.cfg.Scan.Workers))

	acq := newAcquisition(r, store, logger)
	acqErr := acq.run(ctx, files)
	summary.Cached, summary.New, summary.Misses = acq.cached, acq.fresh, acq.misses
	if err := acq.finalSave(); err != nil {
		summary.SaveErrors++
	}
	summary.SaveErrors += acq.saveErrors
	if acqErr != nil {
		return summary, acqErr
	}

	if err := r.scan(ctx, store, &summary, logger); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(started)
	logger.Info("duplicate scan finished",
		logging.String(logging.FieldEventType, "scan_complete"),
		logging.Int("files", summary.Files),
		logging.Int("new", summary.New),
		logging.Int("misses", summary.Misses),
		logging.Int("matches", len(summary.Matches)),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (r *Runner) openStore(cachePath string, logger *slog.Logger) (*fpstore.Store, error) {
	backend, err := fpstore.OpenBackend(r.cfg.Cache.Backend, cachePath)
	if err != nil {
		return nil, err
	}
	store, loadErr := fpstore.Load(backend, logger)
	if loadErr != nil {
		r.reporter.CacheLoadFailed(loadErr)
	}
	return store, nil
}

func (r *Runner) scan(ctx context.Context, store *fpstore.Store, summary *Summary, logger *slog.Logger) error {
	engine, err := similarity.NewEngine(r.cfg.Scan.Threshold)
	if err != nil {
		return err
	}
	scanner, err := matcher.New(r.cfg.Scan.Strategy, engine)
	if err != nil {
		return err
	}

	entries := Entries(store)
	summary.Entries = len(entries)
	summary.Pairs = matcher.PairCount(len(entries))
	r.reporter.ScanStarted(len(entries), summary.Pairs)

	out, err := resultlog.Create(summary.LogPath, resultlog.Header{
		Time:   r.now(),
		Folder: summary.Folder,
		RunID:  summary.RunID,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Debug("close result log failed", logging.Error(err))
		}
	}()

	summary.Matches = []matcher.Match{}
	stats, err := scanner.Scan(ctx, entries, func(m matcher.Match) error {
		if err := out.Append(m); err != nil {
			return err
		}
		summary.Matches = append(summary.Matches, m)
		r.reporter.Matched(m)
		logger.Debug("match found",
			logging.String("a", m.A),
			logging.String("b", m.B),
			logging.Float64("score", m.Score))
		return nil
	})
	summary.Comparisons = stats.Comparisons
	if err != nil {
		return fmt.Errorf("match scan: %w", err)
	}
	r.reporter.ScanFinished(summary.LogPath, len(summary.Matches))
	return nil
}

// Entries lists the store's records as scanner input in lexical path order.
func Entries(store *fpstore.Store) []matcher.Entry {
	keys := store.Keys()
	entries := make([]matcher.Entry, 0, len(keys))
	for _, path := range keys {
		rec, ok := store.Get(path)
		if !ok {
			continue
		}
		entries = append(entries, matcher.Entry{Path: path, Fingerprint: rec.Fingerprint})
	}
	return entries
}
