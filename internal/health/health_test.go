// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }
func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManagerHealthNoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)
}

func TestManagerHealthVerbose(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "ok", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManagerReady(t *testing.T) {
	m := NewManager("v1.0.0")
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)

	m.RegisterChecker(&mockChecker{name: "bad", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestManagerReadyDegradedIsStillReady(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "slow", status: StatusDegraded})

	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestServeHealthAlways200(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "bad", status: StatusUnhealthy})

	req := httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil)
	rec := httptest.NewRecorder()
	m.ServeHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady503WhenUnhealthy(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "bad", status: StatusUnhealthy})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	m.ServeReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	filled := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(filled, []byte("data"), 0o600))

	tests := []struct {
		name string
		path string
		want Status
	}{
		{"missing file", filepath.Join(dir, "nope.csv"), StatusUnhealthy},
		{"directory", dir, StatusUnhealthy},
		{"empty file", empty, StatusDegraded},
		{"readable file", filled, StatusHealthy},
		{"unconfigured", "", StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFileChecker("dataset", tt.path)
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("sqlite", func(context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	bad := NewPingChecker("sqlite", func(context.Context) error { return errors.New("locked") })
	result := bad.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "locked", result.Error)
}

func TestLastIngestChecker(t *testing.T) {
	tests := []struct {
		name    string
		lastRun time.Time
		lastErr string
		want    Status
	}{
		{"never ran", time.Time{}, "", StatusUnhealthy},
		{"last run failed", time.Now(), "boom", StatusUnhealthy},
		{"stale", time.Now().Add(-25 * time.Hour), "", StatusDegraded},
		{"fresh", time.Now(), "", StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLastIngestChecker(func() (time.Time, string) { return tt.lastRun, tt.lastErr })
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}
