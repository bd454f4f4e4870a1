// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/supermart/salesd/internal/analytics"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/ingest"
	"github.com/supermart/salesd/internal/log"
	"github.com/supermart/salesd/internal/metrics"
)

const (
	defaultTopN        = 10
	maxTopN            = 100
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

// snapshot returns the current dataset or writes a 503 when nothing is
// loaded yet.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*dataset.Snapshot, bool) {
	snap := s.holder.Current()
	if snap.Empty() {
		writeError(w, r, http.StatusServiceUnavailable, "no_data", "no dataset loaded yet")
		return nil, false
	}
	return snap, true
}

// serveAggregate runs one cached aggregation: parse the filter, consult the
// cache, compute on miss, record the query duration.
func (s *Server) serveAggregate(w http.ResponseWriter, r *http.Request, endpoint string, extra []string, compute func([]dataset.Record, analytics.Filter) any) {
	start := time.Now()
	defer func() { metrics.ObserveQueryDuration(endpoint, time.Since(start).Seconds()) }()

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	key := analytics.CacheKey(endpoint, f, extra...)
	if v, found := s.cache.Get(key); found {
		metrics.IncCacheHit()
		writeJSON(w, r, http.StatusOK, v)
		return
	}
	metrics.IncCacheMiss()

	result := compute(snap.Records, f)
	s.cache.Set(key, result, s.cfg.CacheTTL)
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "overview", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.ComputeOverview(records, f)
	})
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "trends.monthly", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.MonthlyTrend(records, f)
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "regions", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.Regions(records, f)
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "categories", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.Categories(records, f)
	})
}

func (s *Server) handleTopSubCategories(w http.ResponseWriter, r *http.Request) {
	n := parseIntParam(r, "n", defaultTopN, maxTopN)
	s.serveAggregate(w, r, "categories.top", []string{strconv.Itoa(n)}, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.TopSubCategories(records, f, n)
	})
}

func (s *Server) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "categories.tree", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.CategoryTree(records, f)
	})
}

func (s *Server) handleDiscounts(w http.ResponseWriter, r *http.Request) {
	s.serveAggregate(w, r, "discounts", nil, func(records []dataset.Record, f analytics.Filter) any {
		return analytics.DiscountImpact(records, f)
	})
}

type recordsResponse struct {
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Records []dataset.Record `json:"records"`
}

// handleRecords pages through the raw filtered records. Paging is not cached;
// the snapshot slice is shared, never copied.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	filtered := analytics.FilterRecords(snap.Records, f)

	limit := parseIntParam(r, "limit", defaultRecordLimit, maxRecordLimit)
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	writeJSON(w, r, http.StatusOK, recordsResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Records: filtered[offset:end],
	})
}

type datasetStatus struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loadedAt"`
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
}

type statusResponse struct {
	Version    string         `json:"version"`
	Dataset    *datasetStatus `json:"dataset,omitempty"`
	LastIngest ingest.Status  `json:"lastIngest"`
	Running    bool           `json:"ingestRunning"`
	Cache      cacheStatus    `json:"cache"`
}

type cacheStatus struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:    s.version,
		LastIngest: s.runner.Status(),
		Running:    s.runner.Running(),
	}

	if snap := s.holder.Current(); !snap.Empty() {
		resp.Dataset = &datasetStatus{
			Source:   snap.Source,
			LoadedAt: snap.LoadedAt,
			Records:  len(snap.Records),
			Skipped:  snap.Skipped,
		}
	}

	stats := s.cache.Stats()
	resp.Cache = cacheStatus{Hits: stats.Hits, Misses: stats.Misses, Entries: stats.CurrentSize}

	writeJSON(w, r, http.StatusOK, resp)
}

type ingestEntry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
	RowsLoaded  int       `json:"rowsLoaded"`
	RowsSkipped int       `json:"rowsSkipped"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

func (s *Server) handleIngests(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10, 100)

	history, err := s.store.RecentIngests(r.Context(), limit)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str("event", "api.ingests_query_failed").
			Msg("failed to load ingest history")
		writeError(w, r, http.StatusInternalServerError, "query_failed", "failed to load ingest history")
		return
	}

	entries := make([]ingestEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, ingestEntry{
			ID:          h.ID,
			Source:      h.Source,
			StartedAt:   h.StartedAt,
			FinishedAt:  h.FinishedAt,
			RowsLoaded:  h.RowsLoaded,
			RowsSkipped: h.RowsSkipped,
			Status:      h.Status,
			Error:       h.Error,
		})
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// handleRefresh triggers a synchronous re-ingest of the dataset. The ingest
// keeps running even if the client disconnects.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	status, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ingest.ErrAlreadyRunning) {
			writeError(w, r, http.StatusConflict, "ingest_running", "an ingest is already in progress")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, status)
}
