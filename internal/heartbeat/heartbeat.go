// Package heartbeat implements the watcher-side registry lifecycle of
// spec.md §4.9: announce on start, periodic refresh, remove on clean stop.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"github.com/vforsh/argus/internal/registry"
)

const DefaultIntervalMs = 15000

// Heartbeat owns one WatcherRecord's lifecycle in the shared registry.
type Heartbeat struct {
	store    *registry.Store
	record   registry.WatcherRecord
	interval time.Duration
	logger   *slog.Logger
}

// New returns a Heartbeat for rec, announcing every intervalMs
// (DefaultIntervalMs if <=0).
func New(store *registry.Store, rec registry.WatcherRecord, intervalMs int, logger *slog.Logger) *Heartbeat {
	if intervalMs <= 0 {
		intervalMs = DefaultIntervalMs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Heartbeat{
		store:    store,
		record:   rec,
		interval: time.Duration(intervalMs) * time.Millisecond,
		logger:   logger,
	}
}

// Run announces the record, then refreshes updatedAt every interval until
// ctx is cancelled, at which point it removes the record (spec.md §4.9).
func (h *Heartbeat) Run(ctx context.Context) {
	if err := h.store.AnnounceWatcher(h.record); err != nil {
		h.logger.Error("heartbeat: failed to announce watcher", "id", h.record.ID, "err", err)
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := h.store.RemoveWatcher(h.record.ID); err != nil {
				h.logger.Error("heartbeat: failed to remove watcher on shutdown", "id", h.record.ID, "err", err)
			}
			return
		case <-ticker.C:
			h.record.UpdatedAt = time.Now()
			if err := h.store.AnnounceWatcher(h.record); err != nil {
				h.logger.Warn("heartbeat: refresh failed", "id", h.record.ID, "err", err)
			}
		}
	}
}
