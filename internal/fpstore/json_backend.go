package fpstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONBackend stores the snapshot as a JSON object of path -> [duration, fingerprint].
// Paths that are not valid UTF-8 are stored under a tagged base64 key.
type JSONBackend struct {
	path string
}

// NewJSONBackend returns a backend writing to path.
func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

func (b *JSONBackend) Path() string { return b.path }

func (b *JSONBackend) Close() error { return nil }

func (b *JSONBackend) Read() (map[string]Record, []Reject, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Record{}, nil, nil
		}
		return nil, nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]Record{}, nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse cache file: %w", err)
	}

	records := make(map[string]Record, len(raw))
	var rejects []Reject
	for key, value := range raw {
		path, err := decodeKey(key)
		if err != nil {
			rejects = append(rejects, Reject{Key: key, Err: err})
			continue
		}
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			rejects = append(rejects, Reject{Key: path, Err: err})
			continue
		}
		records[path] = rec
	}
	return records, rejects, nil
}

// Write replaces the snapshot atomically: readers see either the previous
// file or the new one, never a partial write.
func (b *JSONBackend) Write(records map[string]Record) error {
	encoded := make(map[string]Record, len(records))
	for path, rec := range records {
		encoded[encodeKey(path)] = rec
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encoded); err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
