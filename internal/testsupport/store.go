package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// CacheEntry mirrors one persisted fingerprint record.
type CacheEntry struct {
	Duration    int
	Fingerprint string
}

// WriteCacheFile writes a fingerprint cache snapshot in the on-disk JSON
// layout (path -> [duration, fingerprint]).
func WriteCacheFile(t testing.TB, path string, entries map[string]CacheEntry) {
	t.Helper()

	raw := make(map[string][2]any, len(entries))
	for key, entry := range entries {
		raw[key] = [2]any{entry.Duration, entry.Fingerprint}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		t.Fatalf("marshal cache: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write cache %s: %v", path, err)
	}
}

// ReadCacheFile decodes a JSON cache snapshot written by the fingerprint store.
func ReadCacheFile(t testing.TB, path string) map[string]CacheEntry {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache %s: %v", path, err)
	}
	var raw map[string][2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode cache %s: %v", path, err)
	}
	out := make(map[string]CacheEntry, len(raw))
	for key, pair := range raw {
		var entry CacheEntry
		if err := json.Unmarshal(pair[0], &entry.Duration); err != nil {
			t.Fatalf("decode duration for %s: %v", key, err)
		}
		if err := json.Unmarshal(pair[1], &entry.Fingerprint); err != nil {
			t.Fatalf("decode fingerprint for %s: %v", key, err)
		}
		out[key] = entry
	}
	return out
}
