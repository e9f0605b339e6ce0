// Package watcher keeps clip presence flags in sync with the filesystem.
// Clips live wherever the user imported them from, often external drives,
// so files come and go; a periodic stat pass is enough at library scale.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/library"
)

const defaultInterval = 30 * time.Second

type PresenceWatcher struct {
	repo     library.Repository
	logger   *slog.Logger
	interval time.Duration
}

func NewPresenceWatcher(repo library.Repository, logger *slog.Logger) *PresenceWatcher {
	return &PresenceWatcher{
		repo:     repo,
		logger:   logger,
		interval: defaultInterval,
	}
}

// Start blocks until ctx is cancelled, running a presence sweep every
// interval. The first sweep runs immediately so restarts pick up drive
// changes right away.
func (w *PresenceWatcher) Start(ctx context.Context) {
	w.logger.Info("presence watcher started", "interval", w.interval)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("presence watcher stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *PresenceWatcher) sweep(ctx context.Context) {
	clips, err := w.repo.ListClips(ctx)
	if err != nil {
		w.logger.Error("presence sweep failed to list clips", "error", err)
		return
	}

	for _, clip := range clips {
		present := fileExists(clip.Path)
		if present == clip.Present {
			continue
		}

		if err := w.repo.UpdateClipPresent(ctx, clip.ID, present); err != nil {
			w.logger.Error("failed to update clip presence",
				"clip_id", clip.ID, "error", err)
			continue
		}

		if present {
			w.logger.Info("clip reappeared", "clip_id", clip.ID, "path", clip.Path)
		} else {
			w.logger.Warn("clip went missing", "clip_id", clip.ID, "path", clip.Path)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
