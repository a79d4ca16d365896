package fpstore

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock is an exclusive advisory lock on a cache snapshot.
type Lock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for the snapshot at cachePath.
func LockPath(cachePath string) string {
	return cachePath + ".lock"
}

// AcquireLock takes the cache lock without blocking. It returns ErrLocked
// when another process already owns the cache.
func AcquireLock(cachePath string) (*Lock, error) {
	fl := flock.New(LockPath(cachePath))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, LockPath(cachePath))
	}
	return &Lock{lock: fl}, nil
}

// Release unlocks and leaves the lock file in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
