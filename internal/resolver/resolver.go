// Package resolver implements the front-end's watcher lookup of spec.md
// §4.10: prune by TTL, exact id match, cwd disambiguation, and a parallel
// liveness probe over remaining candidates.
package resolver

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/dispatch"
	"github.com/vforsh/argus/internal/registry"
)

// Error is returned when resolution fails, carrying the candidate list for
// diagnostics (spec.md §4.10 step 2/5).
type Error struct {
	Kind       argerr.Kind
	Message    string
	Candidates []registry.WatcherRecord
}

func (e *Error) Error() string { return e.Message }

// Resolver resolves a (possibly empty) watcher id against the shared
// registry.
type Resolver struct {
	Store  *registry.Store
	Client *dispatch.Client
}

func New(store *registry.Store, client *dispatch.Client) *Resolver {
	return &Resolver{Store: store, Client: client}
}

// Resolve implements spec.md §4.10's five-step procedure.
func (r *Resolver) Resolve(ctx context.Context, id string) (registry.WatcherRecord, error) {
	if err := r.Store.PruneStaleWatchers(registry.DefaultTTL); err != nil {
		// Pruning failures are non-fatal; resolution proceeds against
		// whatever the registry currently holds.
		_ = err
	}

	reg, _ := r.Store.Read()
	candidates := sortedRecords(reg)

	if id != "" {
		if rec, ok := reg.Watchers[id]; ok {
			return rec, nil
		}
		return registry.WatcherRecord{}, &Error{
			Kind:       argerr.KindNotFound,
			Message:    fmt.Sprintf("watcher_not_found: no watcher with id %q", id),
			Candidates: candidates,
		}
	}

	cwd, _ := os.Getwd()
	var cwdMatches []registry.WatcherRecord
	for _, rec := range candidates {
		if rec.Cwd == cwd {
			cwdMatches = append(cwdMatches, rec)
		}
	}
	if len(cwdMatches) == 1 {
		return cwdMatches[0], nil
	}

	live := r.probeAll(ctx, candidates)
	if len(live) == 1 {
		return live[0], nil
	}

	return registry.WatcherRecord{}, &Error{
		Kind:       argerr.KindValidation,
		Message:    "watcher id required: multiple or no watchers matched",
		Candidates: candidates,
	}
}

// probeAll issues GET /status against every candidate in parallel via
// errgroup, returning only those that responded OK (spec.md §4.10 step 4).
func (r *Resolver) probeAll(ctx context.Context, candidates []registry.WatcherRecord) []registry.WatcherRecord {
	if len(candidates) == 0 {
		return nil
	}
	ok := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range candidates {
		i, rec := i, rec
		g.Go(func() error {
			if _, err := r.Client.Status(gctx, rec); err == nil {
				ok[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	var live []registry.WatcherRecord
	for i, rec := range candidates {
		if ok[i] {
			live = append(live, rec)
		}
	}
	return live
}

func sortedRecords(reg registry.Registry) []registry.WatcherRecord {
	out := make([]registry.WatcherRecord, 0, len(reg.Watchers))
	for _, rec := range reg.Watchers {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
