// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/supermart/salesd/internal/analytics"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/log"
)

// summary is the JSON document written after each successful ingest.
type summary struct {
	JobID    string             `json:"jobId"`
	Source   string             `json:"source"`
	LoadedAt time.Time          `json:"loadedAt"`
	Records  int                `json:"records"`
	Skipped  int                `json:"skipped"`
	Overview analytics.Overview `json:"overview"`
}

// writeSummary writes the ingest summary atomically. renameio handles temp
// file creation, fsync and rename so readers never observe a partial file.
func (r *Runner) writeSummary(ctx context.Context, snap *dataset.Snapshot, jobID string) error {
	logger := log.WithComponentFromContext(ctx, "ingest")
	path := filepath.Join(r.cfg.DataDir, "ingest-summary.json")

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending summary file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending summary file")
		}
	}()

	doc := summary{
		JobID:    jobID,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Records:  len(snap.Records),
		Skipped:  snap.Skipped,
		Overview: overviewForSummary(snap),
	}

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write summary data: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace summary file: %w", err)
	}
	return nil
}
