package fpstore

import (
	"errors"
	"fmt"
)

// ErrLocked reports that another process holds the cache lock.
var ErrLocked = errors.New("fingerprint cache is locked by another process")

// LoadError reports a snapshot that could not be read or parsed. The store
// returned alongside it is empty and usable.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load fingerprint cache %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a snapshot write that failed. The in-memory store is
// unaffected and a later save may succeed.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save fingerprint cache %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
