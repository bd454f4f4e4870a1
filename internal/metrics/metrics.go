// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus business metrics for salesd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset metrics
	recordsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "salesd_records_loaded",
		Help: "Number of sales records in the active dataset snapshot",
	})

	rowsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salesd_rows_skipped_total",
		Help: "Total number of malformed CSV rows skipped during ingest",
	})

	// Ingest metrics
	ingestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesd_ingests_total",
		Help: "Ingest runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	ingestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesd_ingest_failures_total",
		Help: "Total number of ingest failures by stage",
	}, []string{"stage"}) // stage=read|parse|persist|export

	ingestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "salesd_ingest_duration_seconds",
		Help:    "Time spent loading and persisting the dataset",
		Buckets: prometheus.DefBuckets,
	})

	watchReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salesd_watch_reloads_total",
		Help: "Ingest runs triggered by dataset file changes",
	})

	// Query metrics
	queryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salesd_query_duration_seconds",
		Help:    "Aggregation query latencies by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salesd_cache_requests_total",
		Help: "Query cache lookups by result",
	}, []string{"result"}) // result=hit|miss
)

func RecordRecordsLoaded(n int)     { recordsLoaded.Set(float64(n)) }
func AddRowsSkipped(n int)          { rowsSkippedTotal.Add(float64(n)) }
func IncIngest(outcome string)      { ingestsTotal.WithLabelValues(outcome).Inc() }
func IncIngestFailure(stage string) { ingestFailuresTotal.WithLabelValues(stage).Inc() }
func ObserveIngestDuration(seconds float64) {
	ingestDurationSeconds.Observe(seconds)
}
func IncWatchReload() { watchReloadsTotal.Inc() }

func ObserveQueryDuration(endpoint string, seconds float64) {
	queryDurationSeconds.WithLabelValues(endpoint).Observe(seconds)
}

func IncCacheHit()  { cacheRequestsTotal.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheRequestsTotal.WithLabelValues("miss").Inc() }
