package preflight

import (
	"context"
	"path/filepath"

	"dupefinder/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check relevant to scanning folder with cfg. An empty
// folder skips the folder-relative checks.
func RunAll(ctx context.Context, cfg *config.Config, folder string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckFingerprinter(ctx, cfg)}

	if folder != "" {
		cacheDir := filepath.Dir(cfg.CachePath(folder))
		logDir := filepath.Dir(cfg.ResultLogPath(folder))
		writesInFolder := samePath(cacheDir, folder) || samePath(logDir, folder)

		if writesInFolder {
			results = append(results, CheckDirectoryAccess("Scan folder", folder))
		} else {
			results = append(results, CheckReadableDirectory("Scan folder", folder))
		}
		if !samePath(cacheDir, folder) {
			results = append(results, CheckDirectoryAccess("Cache directory", cacheDir))
		}
		if !samePath(logDir, folder) && !samePath(logDir, cacheDir) {
			results = append(results, CheckDirectoryAccess("Result log directory", logDir))
		}
	}

	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
