package dedupe

import "dupefinder/internal/matcher"

// Reporter receives operator-facing events. Calls are serialized; an
// implementation need not be safe for concurrent use.
type Reporter interface {
	CacheLoadFailed(err error)
	StaleRemoved(path string)
	Reconciled(removed int)
	FilesFound(count int)
	Fingerprinted(path string)
	Cached(path string)
	Skipped(path string, err error)
	CacheSaved(newCount int, final bool)
	CacheSaveFailed(err error)
	ScanStarted(entries, pairs int)
	Matched(m matcher.Match)
	ScanFinished(logPath string, matches int)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) CacheLoadFailed(error)    {}
func (NopReporter) StaleRemoved(string)      {}
func (NopReporter) Reconciled(int)           {}
func (NopReporter) FilesFound(int)           {}
func (NopReporter) Fingerprinted(string)     {}
func (NopReporter) Cached(string)            {}
func (NopReporter) Skipped(string, error)    {}
func (NopReporter) CacheSaved(int, bool)     {}
func (NopReporter) CacheSaveFailed(error)    {}
func (NopReporter) ScanStarted(int, int)     {}
func (NopReporter) Matched(matcher.Match)    {}
func (NopReporter) ScanFinished(string, int) {}
