package registry

import (
	"encoding/json"
	"time"

	"github.com/vforsh/argus/internal/util"
)

// DefaultTTL is the default staleness window pruneStaleWatchers uses, per
// spec.md §4.1.
const DefaultTTL = 60 * time.Second

// Store reads and writes a single registry.json file under path, guarded
// by a cross-process lockfile for writers. Store is safe for concurrent
// use by multiple goroutines within one process; concurrent use by
// multiple processes is the whole point (§4.1).
type Store struct {
	path string
}

// New returns a Store bound to the registry file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Warning describes a non-fatal condition encountered while reading the
// registry (missing file, corrupt JSON, torn write).
type Warning struct {
	Message string
}

// Read loads the registry, tolerating an absent or unparsable file by
// returning an empty registry plus a warning — readers never take the
// lock and must tolerate a torn concurrent write (spec.md §4.1).
func (s *Store) Read() (Registry, []Warning) {
	var r Registry
	if err := util.ReadJSONFile(s.path, &r); err != nil {
		return Empty(), []Warning{{Message: "registry unreadable or absent: " + err.Error()}}
	}
	if r.Version == 0 {
		r.Version = 1
	}
	if r.Watchers == nil {
		r.Watchers = map[string]WatcherRecord{}
	}
	return r, nil
}

// Update applies f to the current registry under the lock and persists
// the result atomically. f may be called with a freshly read registry;
// its return value is written back.
func (s *Store) Update(f func(Registry) Registry) error {
	lock := newFileLock(s.path)
	if err := lock.acquire(); err != nil {
		return err
	}
	defer lock.release()

	cur, _ := s.Read()
	next := f(cur)
	if next.Version == 0 {
		next.Version = 1
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0o644)
}

// AnnounceWatcher sets rec in the registry (used on watcher startup and by
// the heartbeat's refresh tick).
func (s *Store) AnnounceWatcher(rec WatcherRecord) error {
	return s.Update(func(r Registry) Registry {
		return SetWatcherEntry(r, rec)
	})
}

// RemoveWatcher removes id from the registry (used on orderly shutdown).
func (s *Store) RemoveWatcher(id string) error {
	return s.Update(func(r Registry) Registry {
		return RemoveWatcherEntry(r, id)
	})
}

// PruneStaleWatchers removes records whose UpdatedAt predates now-ttl.
// Used by the front-end's resolver before any dispatch (spec.md §4.10).
func (s *Store) PruneStaleWatchers(ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.Update(func(r Registry) Registry {
		return PruneStale(r, ttl, time.Now())
	})
}
