package fpstore

import (
	"fmt"
	"strings"
)

// Backend persists whole snapshots of the store. Read on a missing snapshot
// returns an empty map and no error. Entries that cannot be decoded are
// returned as rejects instead of failing the whole read.
type Backend interface {
	Read() (map[string]Record, []Reject, error)
	Write(records map[string]Record) error
	Path() string
	Close() error
}

// OpenBackend returns the backend named kind ("json" or "sqlite") rooted at path.
func OpenBackend(kind, path string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "json":
		return NewJSONBackend(path), nil
	case "sqlite":
		return NewSQLiteBackend(path), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", kind)
	}
}

// Reject is a snapshot entry dropped while reading.
type Reject struct {
	Key string
	Err error
}
