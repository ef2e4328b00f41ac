// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library to allow seamless switching between OS-level and in-memory filesystem backends.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// ErrLocked is returned by TryLock when another holder owns the lock.
var ErrLocked = errors.New("already locked")

var backend = afero.Afero{Fs: afero.NewOsFs()}

// memLocks tracks lock files taken while an in-memory backend is active.
var (
	memLocksMu sync.Mutex
	memLocks   = make(map[string]struct{})
)

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing and CI environments.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// TryLock takes an exclusive lock on path without blocking.
// On the OS backend this is an advisory flock shared with other processes; in memory it is process-local.
func TryLock(path string) (unlock func() error, err error) {
	if err := backend.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("lock dir: %w", err)
	}

	if _, ok := backend.Fs.(*afero.OsFs); !ok {
		memLocksMu.Lock()
		defer memLocksMu.Unlock()
		if _, held := memLocks[path]; held {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		memLocks[path] = struct{}{}
		return func() error {
			memLocksMu.Lock()
			delete(memLocks, path)
			memLocksMu.Unlock()
			return nil
		}, nil
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return fl.Unlock, nil
}
