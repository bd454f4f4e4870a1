// SPDX-License-Identifier: MIT

// Package ingest loads the sales dataset from CSV into the store and the
// in-memory snapshot.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/supermart/salesd/internal/analytics"
	"github.com/supermart/salesd/internal/cache"
	"github.com/supermart/salesd/internal/config"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/log"
	"github.com/supermart/salesd/internal/metrics"
	"github.com/supermart/salesd/internal/store"
)

// ErrAlreadyRunning is returned when an ingest is triggered while another
// one is in flight.
var ErrAlreadyRunning = errors.New("ingest: already running")

// Status describes the most recent ingest run.
type Status struct {
	JobID       string    `json:"jobId"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	RowsLoaded  int       `json:"rowsLoaded"`
	RowsSkipped int       `json:"rowsSkipped"`
	DurationMS  int64     `json:"durationMs"`
	LastError   string    `json:"lastError,omitempty"`
}

// Runner executes ingest runs, one at a time.
type Runner struct {
	cfg    config.AppConfig
	store  *store.Store
	holder *dataset.Holder
	cache  cache.Cache

	running atomic.Bool

	mu      sync.RWMutex
	status  Status
	lastOK  time.Time
	lastErr string
}

// NewRunner wires an ingest runner. The cache is cleared after every
// successful run so queries never serve stale aggregates.
func NewRunner(cfg config.AppConfig, st *store.Store, holder *dataset.Holder, c cache.Cache) *Runner {
	return &Runner{cfg: cfg, store: st, holder: holder, cache: c}
}

// Run executes one ingest: read CSV, parse, persist, swap the snapshot.
// Concurrent calls are rejected with ErrAlreadyRunning.
func (r *Runner) Run(ctx context.Context) (*Status, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	jobID := uuid.NewString()
	ctx = log.ContextWithIngestID(ctx, jobID)
	logger := log.WithComponentFromContext(ctx, "ingest")

	started := time.Now()
	status := Status{
		JobID:     jobID,
		Source:    r.cfg.DatasetPath,
		StartedAt: started,
	}

	logger.Info().
		Str("event", "ingest.started").
		Str("source", r.cfg.DatasetPath).
		Bool("strict", r.cfg.StrictParse).
		Msg("starting dataset ingest")

	if err := r.store.BeginIngest(ctx, jobID, r.cfg.DatasetPath, started); err != nil {
		logger.Warn().Err(err).Msg("failed to record ingest start")
	}

	runErr := r.run(ctx, &status)

	status.FinishedAt = time.Now()
	status.DurationMS = status.FinishedAt.Sub(started).Milliseconds()
	metrics.ObserveIngestDuration(status.FinishedAt.Sub(started).Seconds())

	if err := r.store.FinishIngest(ctx, jobID, status.FinishedAt, status.RowsLoaded, status.RowsSkipped, runErr); err != nil {
		logger.Warn().Err(err).Msg("failed to record ingest outcome")
	}

	r.mu.Lock()
	r.status = status
	if runErr == nil {
		r.lastOK = status.FinishedAt
		r.lastErr = ""
	} else {
		r.lastErr = runErr.Error()
		r.status.LastError = runErr.Error()
	}
	r.mu.Unlock()

	if runErr != nil {
		metrics.IncIngest("failure")
		logger.Error().
			Err(runErr).
			Str("event", "ingest.failed").
			Msg("dataset ingest failed")
		return nil, runErr
	}

	metrics.IncIngest("success")
	logger.Info().
		Str("event", "ingest.completed").
		Int("rows_loaded", status.RowsLoaded).
		Int("rows_skipped", status.RowsSkipped).
		Int64("duration_ms", status.DurationMS).
		Msg("dataset ingest completed")

	st := r.Status()
	return &st, nil
}

func (r *Runner) run(ctx context.Context, status *Status) error {
	f, err := os.Open(r.cfg.DatasetPath)
	if err != nil {
		metrics.IncIngestFailure("read")
		return fmt.Errorf("ingest: open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := dataset.ParseCSV(f, dataset.ParseOptions{Strict: r.cfg.StrictParse})
	if err != nil {
		metrics.IncIngestFailure("parse")
		return fmt.Errorf("ingest: parse dataset: %w", err)
	}
	status.RowsLoaded = len(result.Records)
	status.RowsSkipped = result.Skipped
	metrics.AddRowsSkipped(result.Skipped)

	if err := r.store.ReplaceAll(ctx, result.Records); err != nil {
		metrics.IncIngestFailure("persist")
		return err
	}

	snap := &dataset.Snapshot{
		Records:  result.Records,
		Source:   r.cfg.DatasetPath,
		LoadedAt: time.Now(),
		Skipped:  result.Skipped,
	}
	r.holder.Swap(snap)
	metrics.RecordRecordsLoaded(len(result.Records))
	r.cache.Clear()

	if err := r.writeSummary(ctx, snap, status.JobID); err != nil {
		// Export failure does not invalidate the loaded dataset.
		metrics.IncIngestFailure("export")
		logger := log.WithComponentFromContext(ctx, "ingest")
		logger.Warn().
			Err(err).
			Str("event", "ingest.export_failed").
			Msg("failed to write ingest summary")
	}

	return nil
}

// WarmStart loads records from the store when the CSV source is unavailable,
// so a restart can serve the last ingested dataset.
func (r *Runner) WarmStart(ctx context.Context) (int, error) {
	records, err := r.store.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	r.holder.Swap(&dataset.Snapshot{
		Records:  records,
		Source:   "store",
		LoadedAt: time.Now(),
	})
	metrics.RecordRecordsLoaded(len(records))
	return len(records), nil
}

// Status returns a copy of the last ingest status.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// LastRun reports the last successful ingest time and the last error,
// feeding the readiness checker.
func (r *Runner) LastRun() (time.Time, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastOK, r.lastErr
}

// Running reports whether an ingest is currently in flight.
func (r *Runner) Running() bool { return r.running.Load() }

// overviewForSummary is split out so the summary export reuses the same
// aggregation as the API.
func overviewForSummary(snap *dataset.Snapshot) analytics.Overview {
	return analytics.ComputeOverview(snap.Records, analytics.Filter{})
}
