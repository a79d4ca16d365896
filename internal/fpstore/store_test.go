package fpstore_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"dupefinder/internal/fpstore"
	"dupefinder/internal/logging"
	"dupefinder/internal/testsupport"
)

func TestLoadMissingSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", store.Len())
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("loading should not create the snapshot, stat err=%v", statErr)
	}
}

func TestLoadCorruptSnapshotStartsEmptyWithLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt cache: %v", err)
	}

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	var loadErr *fpstore.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if loadErr.Path != path {
		t.Fatalf("unexpected error path %q", loadErr.Path)
	}
	if store == nil || store.Len() != 0 {
		t.Fatalf("expected usable empty store")
	}

	store.Put("/music/a.mp3", fpstore.Record{Duration: 1, Fingerprint: "1,2"})
	if err := store.Save(); err != nil {
		t.Fatalf("save after corrupt load: %v", err)
	}
	if got := testsupport.ReadCacheFile(t, path); len(got) != 1 {
		t.Fatalf("expected corrupt snapshot to be replaced, got %v", got)
	}
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fp.json")
	snapshot := `{
  "/music/good.mp3": [180, "1,2,3"],
  "/music/float.mp3": [215.0, "4,5"],
  "/music/short.mp3": [180],
  "/music/empty.mp3": [3, ""],
  "/music/text.mp3": ["3", "7"]
}`
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	logPath := filepath.Join(dir, "fpstore.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), logger)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := store.Keys(); !slices.Equal(got, []string{"/music/float.mp3", "/music/good.mp3"}) {
		t.Fatalf("unexpected surviving keys: %v", got)
	}
	if rec, _ := store.Get("/music/float.mp3"); rec.Duration != 215 {
		t.Fatalf("expected float duration to load as 215, got %+v", rec)
	}
	if store.Rejected() != 3 {
		t.Fatalf("expected 3 rejected entries, got %d", store.Rejected())
	}

	logData, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, name := range []string{"short.mp3", "empty.mp3", "text.mp3"} {
		if !strings.Contains(string(logData), name) {
			t.Fatalf("expected warning naming %s, got %q", name, logData)
		}
	}
}

func TestSaveLoadRoundTripNonUTF8Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")
	latin1 := "/music/caf\xe9.mp3"
	want := map[string]fpstore.Record{
		latin1:            {Duration: 200, Fingerprint: "1,2"},
		"/music/café.mp3": {Duration: 201, Fingerprint: "3,4"},
	}

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for p, rec := range want {
		store.Put(p, rec)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	for range 2 {
		reloaded, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
		if err != nil {
			t.Fatalf("reload returned error: %v", err)
		}
		got := reloaded.Snapshot()
		if len(got) != len(want) {
			t.Fatalf("unexpected entries after reload: %q", reloaded.Keys())
		}
		for p, rec := range want {
			if got[p] != rec {
				t.Fatalf("entry %q not preserved: got %+v want %+v", p, got[p], rec)
			}
		}
		if err := reloaded.Save(); err != nil {
			t.Fatalf("re-save: %v", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !utf8.Valid(raw) {
		t.Fatalf("snapshot should be valid UTF-8 JSON: %q", raw)
	}
	if strings.ContainsRune(string(raw), utf8.RuneError) {
		t.Fatalf("snapshot replaced bytes with U+FFFD: %s", raw)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")
	want := map[string]fpstore.Record{
		"/music/a.mp3":            {Duration: 180, Fingerprint: "1,2,3"},
		"/music/b & c <live>.ogg": {Duration: 0, Fingerprint: "-5,7"},
		"relative/d.flac":         {Duration: 42, Fingerprint: "9"},
	}

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for p, rec := range want {
		store.Put(p, rec)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	got := reloaded.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("unexpected entry count: got %d want %d", len(got), len(want))
	}
	for p, rec := range want {
		if got[p] != rec {
			t.Fatalf("entry %q: got %+v want %+v", p, got[p], rec)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var decoded map[string][]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("snapshot is not path -> array JSON: %v", err)
	}
	if pair := decoded["/music/a.mp3"]; len(pair) != 2 || pair[1] != "1,2,3" {
		t.Fatalf("unexpected on-disk record: %v", pair)
	}
}

func TestLoadReadsExistingSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fp.json")
	testsupport.WriteCacheFile(t, path, map[string]testsupport.CacheEntry{
		"/music/b.mp3": {Duration: 200, Fingerprint: "4,5"},
		"/music/a.mp3": {Duration: 100, Fingerprint: "1,2"},
	})

	store, err := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !store.Contains("/music/a.mp3") || !store.Contains("/music/b.mp3") {
		t.Fatalf("expected both entries, got %v", store.Keys())
	}
	if got := store.Keys(); !slices.Equal(got, []string{"/music/a.mp3", "/music/b.mp3"}) {
		t.Fatalf("expected lexical key order, got %v", got)
	}
	rec, ok := store.Get("/music/b.mp3")
	if !ok || rec.Duration != 200 || rec.Fingerprint != "4,5" {
		t.Fatalf("unexpected record: %+v ok=%v", rec, ok)
	}
}

func TestPutOverwritesAndDelete(t *testing.T) {
	store, _ := fpstore.Load(fpstore.NewJSONBackend(filepath.Join(t.TempDir(), "fp.json")), nil)

	store.Put("/a.mp3", fpstore.Record{Duration: 1, Fingerprint: "1"})
	store.Put("/a.mp3", fpstore.Record{Duration: 2, Fingerprint: "2"})
	if rec, _ := store.Get("/a.mp3"); rec.Fingerprint != "2" {
		t.Fatalf("expected overwrite, got %+v", rec)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}
	if !store.Delete("/a.mp3") {
		t.Fatal("expected delete to report presence")
	}
	if store.Delete("/a.mp3") {
		t.Fatal("second delete should report absence")
	}
	store.Put("/b.mp3", fpstore.Record{Duration: 2, Fingerprint: "2"})
	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected clear to empty the store, got %d", store.Len())
	}
}

func TestReconcileRemovesMissingAndNonRegular(t *testing.T) {
	root := t.TempDir()
	paths := testsupport.AudioTree(t, root, "keep.mp3", "gone.mp3")
	dirPath := filepath.Join(root, "album.mp3")
	if err := os.Mkdir(dirPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cachePath := filepath.Join(root, "fp.json")
	testsupport.WriteCacheFile(t, cachePath, map[string]testsupport.CacheEntry{
		paths[0]: {Duration: 1, Fingerprint: "1"},
		paths[1]: {Duration: 2, Fingerprint: "2"},
		dirPath:  {Duration: 3, Fingerprint: "3"},
	})
	if err := os.Remove(paths[1]); err != nil {
		t.Fatalf("remove: %v", err)
	}

	store, err := fpstore.Load(fpstore.NewJSONBackend(cachePath), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	removed := store.Reconcile()
	want := []string{dirPath, paths[1]}
	slices.Sort(want)
	if !slices.Equal(removed, want) {
		t.Fatalf("unexpected removals: got %v want %v", removed, want)
	}
	if !store.Contains(paths[0]) || store.Len() != 1 {
		t.Fatalf("expected only live entry to remain, got %v", store.Keys())
	}
	if again := store.Reconcile(); len(again) != 0 {
		t.Fatalf("second reconcile should be a no-op, got %v", again)
	}
}

func TestSaveFailureKeepsMemoryAndPreviousSnapshot(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "not-a-dir")
	testsupport.WriteFile(t, blocker, 4)

	store, err := fpstore.Load(fpstore.NewJSONBackend(filepath.Join(blocker, "fp.json")), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	store.Put("/a.mp3", fpstore.Record{Duration: 1, Fingerprint: "1"})

	err = store.Save()
	var saveErr *fpstore.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *SaveError, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("failed save must not drop records, got %d", store.Len())
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fp.json")
	store, _ := fpstore.Load(fpstore.NewJSONBackend(path), nil)
	store.Put("/a.mp3", fpstore.Record{Duration: 1, Fingerprint: "1"})
	for range 3 {
		if err := store.Save(); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "fp.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only the snapshot, got %v", names)
	}
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	if b, err := fpstore.OpenBackend("json", filepath.Join(dir, "fp.json")); err != nil {
		t.Fatalf("json backend: %v", err)
	} else if _, ok := b.(*fpstore.JSONBackend); !ok {
		t.Fatalf("unexpected backend type %T", b)
	}
	if b, err := fpstore.OpenBackend("SQLite", filepath.Join(dir, "fp.db")); err != nil {
		t.Fatalf("sqlite backend: %v", err)
	} else if _, ok := b.(*fpstore.SQLiteBackend); !ok {
		t.Fatalf("unexpected backend type %T", b)
	}
	if _, err := fpstore.OpenBackend("redis", filepath.Join(dir, "x")); err == nil {
		t.Fatal("expected unknown backend to fail")
	}
}
