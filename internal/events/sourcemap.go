package events

import (
	"fmt"
	"sync"
)

// SourceMapResolver resolves a generated {file, line, column} to an
// original-source location. Fetching and parsing `<file>.map` is an
// external collaborator (spec.md §1); this package only defines the
// interface and a result cache with negative-cache support.
type SourceMapResolver interface {
	// Resolve returns the original location for the given generated
	// position, or ok=false if the file has no source map or resolution
	// failed.
	Resolve(file string, line, column int) (resolved Position, ok bool)
}

// Position is a 1-based source location.
type Position struct {
	File   string
	Line   int
	Column int
}

// NoopResolver never resolves anything; used when no source-map backend is
// configured.
type NoopResolver struct{}

func (NoopResolver) Resolve(string, int, int) (Position, bool) { return Position{}, false }

// CachingResolver wraps a SourceMapResolver, caching each result per
// (file, line, column). A file whose lookup fails once is negative-cached
// as a whole, so later frames from the same generated file skip straight to
// the fallback location without calling inner. For a file that resolves,
// inner is called once per distinct position; the cache does not hold the
// `<file>.map` itself.
type CachingResolver struct {
	inner SourceMapResolver

	mu         sync.Mutex
	fileFailed map[string]bool
	positions  map[string]cacheEntry
}

type cacheEntry struct {
	pos Position
	ok  bool
}

func NewCachingResolver(inner SourceMapResolver) *CachingResolver {
	return &CachingResolver{
		inner:      inner,
		fileFailed: make(map[string]bool),
		positions:  make(map[string]cacheEntry),
	}
}

func (c *CachingResolver) Resolve(file string, line, column int) (Position, bool) {
	c.mu.Lock()
	if c.fileFailed[file] {
		c.mu.Unlock()
		return Position{}, false
	}
	key := fmt.Sprintf("%s:%d:%d", file, line, column)
	if entry, found := c.positions[key]; found {
		c.mu.Unlock()
		return entry.pos, entry.ok
	}
	c.mu.Unlock()

	pos, ok := c.inner.Resolve(file, line, column)

	c.mu.Lock()
	c.positions[key] = cacheEntry{pos: pos, ok: ok}
	if !ok {
		c.fileFailed[file] = true
	}
	c.mu.Unlock()
	return pos, ok
}
