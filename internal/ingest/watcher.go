// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/supermart/salesd/internal/log"
	"github.com/supermart/salesd/internal/metrics"
)

// watchDebounce coalesces bursts of file events (editors and atomic
// replacers emit several) into a single ingest run.
const watchDebounce = 2 * time.Second

// Watch re-runs ingest whenever the dataset file changes. It blocks until
// ctx is cancelled. The parent directory is watched rather than the file
// itself so atomic rename-based replacements are picked up.
func (r *Runner) Watch(ctx context.Context) error {
	logger := log.WithComponent("watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(r.cfg.DatasetPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Info().
		Str("event", "watch.started").
		Str("path", r.cfg.DatasetPath).
		Msg("watching dataset for changes")

	target := filepath.Clean(r.cfg.DatasetPath)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			metrics.IncWatchReload()
			logger.Info().
				Str("event", "watch.reload").
				Msg("dataset changed, re-running ingest")
			if _, err := r.Run(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				logger.Error().Err(err).Msg("watch-triggered ingest failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("dataset watcher error")
		}
	}
}
