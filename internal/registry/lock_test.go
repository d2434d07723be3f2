package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "registry.json")
	l := newFileLock(path)

	if err := l.acquire(); err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	if _, err := os.Stat(l.path); err != nil {
		t.Fatalf("expected lockfile to exist: %v", err)
	}
	l.release()
	if _, err := os.Stat(l.path); !os.IsNotExist(err) {
		t.Errorf("expected lockfile removed after release, stat err = %v", err)
	}
}

func TestFileLock_RemovesStaleLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "registry.json")
	lockPath := path + ".lock"

	if err := os.WriteFile(lockPath, nil, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	old := time.Now().Add(-lockStaleAge - time.Second)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatalf("setup chtimes: %v", err)
	}

	l := newFileLock(path)
	if err := l.acquire(); err != nil {
		t.Fatalf("acquire() on stale lock error = %v", err)
	}
	l.release()
}

func TestFileLock_FreshLockBlocksSecondAcquirer(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "registry.json")

	first := newFileLock(path)
	if err := first.acquire(); err != nil {
		t.Fatalf("first.acquire() error = %v", err)
	}
	defer first.release()

	second := newFileLock(path)
	err := second.acquire()
	if err == nil {
		second.release()
		t.Fatal("expected second acquirer to fail while lock is fresh and held")
	}
}
