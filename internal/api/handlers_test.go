// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermart/salesd/internal/analytics"
	"github.com/supermart/salesd/internal/cache"
	"github.com/supermart/salesd/internal/config"
	"github.com/supermart/salesd/internal/dataset"
	"github.com/supermart/salesd/internal/health"
	"github.com/supermart/salesd/internal/ingest"
	"github.com/supermart/salesd/internal/store"
)

const sampleCSV = `Order ID,Customer Name,Category,Sub Category,City,Order Date,Region,Sales,Discount,Profit,State
OD1,Harish,Beverages,Health Drinks,Vellore,2017-11-08,North,1254,0.12,401.28,Tamil Nadu
OD2,Sudha,Snacks,Noodles,Chennai,2016-03-01,South,749,0.18,149.8,Tamil Nadu
OD3,Harish,Beverages,Soft Drinks,Vellore,2017-06-12,North,433,0.26,112.58,Tamil Nadu
OD4,Hussain,"Eggs, Meat & Fish",Fish,Bodi,2016-10-24,West,1659,0.31,614.94,Tamil Nadu
`

type testEnv struct {
	server *Server
	router http.Handler
	runner *ingest.Runner
	holder *dataset.Holder
	cache  cache.Cache
}

func newTestEnv(t *testing.T, loadData bool) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.DataDir = dir
	cfg.DatasetPath = filepath.Join(dir, "sales.csv")
	cfg.SQLitePath = filepath.Join(dir, "sales.db")
	cfg.RateLimitRPM = 0
	cfg.RefreshRPM = 0

	require.NoError(t, os.WriteFile(cfg.DatasetPath, []byte(sampleCSV), 0o600))

	st, err := store.New(cfg.SQLitePath, store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	holder := dataset.NewHolder()
	c := cache.NewMemory(0)
	runner := ingest.NewRunner(cfg, st, holder, c)

	if loadData {
		_, err := runner.Run(context.Background())
		require.NoError(t, err)
	}

	hm := health.NewManager("test")
	srv := New(cfg, holder, runner, c, hm, st, "test")
	return &testEnv{
		server: srv,
		router: srv.Router(),
		runner: runner,
		holder: holder,
		cache:  c,
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestOverview(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	ov := decode[analytics.Overview](t, rec)
	assert.InDelta(t, 4095, ov.TotalSales, 0.01)
	assert.Equal(t, 4, ov.RecordCount)
	assert.Equal(t, 4, ov.OrderCount)
}

func TestOverviewDateFilter(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview?from=2017-01-01&to=2017-12-31")
	require.Equal(t, http.StatusOK, rec.Code)

	ov := decode[analytics.Overview](t, rec)
	assert.Equal(t, 2, ov.RecordCount)
	assert.InDelta(t, 1254+433, ov.TotalSales, 0.01)
}

func TestOverviewNoData(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/overview")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "no_data", resp.Error)
}

func TestInvalidDateRejected(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview?from=08-11-2017")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "invalid_filter", resp.Error)
}

func TestInvertedDateRangeRejected(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview?from=2017-12-31&to=2017-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonthlyTrend(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/trends/monthly")
	require.Equal(t, http.StatusOK, rec.Code)

	points := decode[[]analytics.MonthPoint](t, rec)
	require.Len(t, points, 4)
	assert.Equal(t, "2016-03", points[0].Month)
	assert.Equal(t, "2017-11", points[3].Month)
}

func TestRegions(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[analytics.RegionReport](t, rec)
	assert.Len(t, report.Regions, 3)
	assert.NotEmpty(t, report.ByYear)
}

func TestTopSubCategoriesLimit(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/categories/top?n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	top := decode[[]analytics.SubCategoryStat](t, rec)
	require.Len(t, top, 2)
	assert.Equal(t, "Fish", top[0].SubCategory)
}

func TestCategoryFilterAppliesToTree(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/categories/tree?category=beverages")
	require.Equal(t, http.StatusOK, rec.Code)

	tree := decode[[]analytics.CategoryNode](t, rec)
	require.Len(t, tree, 1)
	assert.Equal(t, "Beverages", tree[0].Category)
	assert.Len(t, tree[0].Children, 2)
}

func TestRecordsPaging(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/records?limit=2&offset=2")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[recordsResponse](t, rec)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 2, resp.Offset)
	assert.Len(t, resp.Records, 2)
}

func TestRecordsRegionFilter(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/records?region=North,South")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[recordsResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
}

func TestOverviewCategoryWithComma(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview?category="+url.QueryEscape("Eggs, Meat & Fish"))
	require.Equal(t, http.StatusOK, rec.Code)

	ov := decode[analytics.Overview](t, rec)
	assert.Equal(t, 1, ov.RecordCount)
	assert.InDelta(t, 1659, ov.TotalSales, 0.01)
}

func TestRecordsRepeatedCategoryParams(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/records?category=Beverages&category=Snacks")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[recordsResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
}

func TestAggregatesAreCached(t *testing.T) {
	env := newTestEnv(t, true)

	env.get(t, "/api/overview")
	env.get(t, "/api/overview")

	stats := env.cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[statusResponse](t, rec)
	require.NotNil(t, resp.Dataset)
	assert.Equal(t, 4, resp.Dataset.Records)
	assert.False(t, resp.Running)
	assert.NotEmpty(t, resp.LastIngest.JobID)
}

func TestIngestHistory(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/ingests")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decode[[]ingestEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "succeeded", entries[0].Status)
	assert.Equal(t, 4, entries[0].RowsLoaded)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[ingest.Status](t, rec)
	assert.Equal(t, 4, status.RowsLoaded)
}

func TestRefreshFailure(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, os.Remove(env.server.cfg.DatasetPath))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "ingest_failed", resp.Error)
}

func TestNotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "not_found", resp.Error)
}

func TestHealthEndpointsMounted(t *testing.T) {
	env := newTestEnv(t, true)

	assert.Equal(t, http.StatusOK, env.get(t, "/healthz").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/readyz").Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSecurityHeadersSet(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.get(t, "/api/overview")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
