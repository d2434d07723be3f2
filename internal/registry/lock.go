package registry

import (
	"os"
	"time"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/util"
)

const (
	lockAcquireDeadline = 2 * time.Second
	lockStaleAge        = 10 * time.Second
)

// fileLock implements the cross-platform lockfile protocol of spec.md
// §4.1: acquire by create-exclusive, poll with jittered backoff up to a 2s
// deadline, treat a lock older than 10s as stale and remove it, and make
// one final stale-cleanup attempt before giving up.
type fileLock struct {
	path string
	f    *os.File
}

func newFileLock(registryPath string) *fileLock {
	return &fileLock{path: registryPath + ".lock"}
}

// acquire blocks until the lock is held or the deadline elapses, returning
// a *argerr.Error{Kind: KindRegistryLock} on failure.
func (l *fileLock) acquire() error {
	deadline := time.Now().Add(lockAcquireDeadline)
	attempt := 0
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
		if err == nil {
			l.f = f
			return nil
		}
		if !os.IsExist(err) {
			return argerr.Wrap(argerr.KindRegistryLock, err, "open lockfile %q", l.path)
		}

		l.removeIfStale()

		if time.Now().After(deadline) {
			break
		}
		attempt++
		time.Sleep(util.LockStepDelay(attempt))
	}

	// One final stale-cleanup attempt per spec.md §4.1.
	l.removeIfStale()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return argerr.Wrap(argerr.KindRegistryLock, err, "lock %q busy after deadline", l.path)
	}
	l.f = f
	return nil
}

// removeIfStale deletes the lockfile if its mtime is older than
// lockStaleAge. Each acquisition creates the lockfile afresh and release
// removes it, so its mtime is the time the current holder acquired it; a
// holder that keeps the lock longer than lockStaleAge is treated as stale.
func (l *fileLock) removeIfStale() {
	fi, err := os.Stat(l.path)
	if err != nil {
		return
	}
	if time.Since(fi.ModTime()) > lockStaleAge {
		_ = os.Remove(l.path)
	}
}

// release closes and removes the lockfile.
func (l *fileLock) release() {
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	_ = os.Remove(l.path)
}
