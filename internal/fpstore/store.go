package fpstore

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync"

	"dupefinder/internal/logging"
)

// Store is the in-memory fingerprint cache for one run. It is safe for
// concurrent use.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu       sync.RWMutex
	records  map[string]Record
	rejected int
}

// Load reads the snapshot from backend. When the snapshot is missing the
// store starts empty. When it is unreadable the store also starts empty and
// the returned *LoadError says why; the store is usable in both cases.
// Single entries that cannot be decoded are dropped with a warning.
func Load(backend Backend, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "fpstore")
	s := &Store{
		backend: backend,
		logger:  logger,
		records: make(map[string]Record),
	}

	records, rejects, err := backend.Read()
	if err != nil {
		loadErr := &LoadError{Path: backend.Path(), Err: err}
		logging.WarnWithContext(logger, "failed to load fingerprint cache", "fpstore_load_failed",
			logging.Error(err),
			logging.Path(backend.Path()),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "every file will be fingerprinted again"))
		return s, loadErr
	}

	for path, rec := range records {
		switch {
		case path == "":
			rejects = append(rejects, Reject{Key: path, Err: errors.New("empty path")})
		case rec.Fingerprint == "":
			rejects = append(rejects, Reject{Key: path, Err: errors.New("empty fingerprint")})
		default:
			s.records[path] = rec
		}
	}
	for _, reject := range rejects {
		logging.WarnWithContext(logger, "dropping unreadable cache entry", "fpstore_entry_rejected",
			logging.Path(reject.Key),
			logging.Error(reject.Err),
			logging.String("cache", backend.Path()),
			logging.String(logging.FieldErrorHint, "entry is dropped from the cache"),
			logging.String(logging.FieldImpact, "the file will be fingerprinted again"))
	}
	s.rejected = len(rejects)
	logger.Debug("loaded fingerprint cache",
		logging.Int("entry_count", len(s.records)),
		logging.Int("rejected_count", s.rejected),
		logging.Path(backend.Path()))
	return s, nil
}

// Rejected returns how many snapshot entries Load dropped as unreadable.
func (s *Store) Rejected() int { return s.rejected }

// Path returns the snapshot location.
func (s *Store) Path() string { return s.backend.Path() }

// Contains reports whether path has a record.
func (s *Store) Contains(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[path]
	return ok
}

// Get returns the record for path.
func (s *Store) Get(path string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[path]
	return rec, ok
}

// Put inserts or overwrites the record for path in memory only.
func (s *Store) Put(path string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[path] = rec
}

// Delete removes path and reports whether it was present.
func (s *Store) Delete(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[path]; !ok {
		return false
	}
	delete(s.records, path)
	return true
}

// Clear drops every record in memory.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Keys returns every path in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for path := range s.records {
		keys = append(keys, path)
	}
	slices.Sort(keys)
	return keys
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Record, len(s.records))
	for path, rec := range s.records {
		out[path] = rec
	}
	return out
}

// Reconcile removes every entry whose path is no longer an existing regular
// file and returns the removed paths in lexical order.
func (s *Store) Reconcile() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for path := range s.records {
		if isRegularFile(path) {
			continue
		}
		delete(s.records, path)
		removed = append(removed, path)
	}
	slices.Sort(removed)
	for _, path := range removed {
		s.logger.Info("removed stale cache entry", logging.Path(path))
	}
	return removed
}

// Save writes the full mapping to the backend. A failure is returned as
// *SaveError and leaves the in-memory records untouched.
func (s *Store) Save() error {
	snapshot := s.Snapshot()
	if err := s.backend.Write(snapshot); err != nil {
		saveErr := &SaveError{Path: s.backend.Path(), Err: err}
		logging.WarnWithContext(s.logger, "failed to save fingerprint cache", "fpstore_save_failed",
			logging.Error(err),
			logging.Path(s.backend.Path()),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the cache location"),
			logging.String(logging.FieldImpact, "new fingerprints since the last save may be recomputed next run"))
		return saveErr
	}
	s.logger.Debug("saved fingerprint cache",
		logging.Int("entry_count", len(snapshot)),
		logging.Path(s.backend.Path()))
	return nil
}

// Close releases backend resources.
func (s *Store) Close() error {
	return s.backend.Close()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
