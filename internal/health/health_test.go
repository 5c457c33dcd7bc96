package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c staticChecker) Name() string                      { return c.name }
func (c staticChecker) Check(context.Context) CheckResult { return c.result }

func TestHealthAlwaysHealthyWithoutVerbose(t *testing.T) {
	m := NewManager("test")
	m.Register(staticChecker{"broken", CheckResult{Status: StatusUnhealthy}})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)

	verbose := m.Health(context.Background(), true)
	assert.Equal(t, StatusUnhealthy, verbose.Status)
	assert.Contains(t, verbose.Checks, "broken")
}

func TestReadyAggregatesCheckers(t *testing.T) {
	m := NewManager("test")
	assert.True(t, m.Ready(context.Background()).Ready, "no checkers means ready")

	m.Register(staticChecker{"ok", CheckResult{Status: StatusHealthy}})
	m.Register(staticChecker{"slow", CheckResult{Status: StatusDegraded}})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready, "degraded still counts as ready")
	assert.Equal(t, StatusDegraded, resp.Status)

	m.Register(staticChecker{"down", CheckResult{Status: StatusUnhealthy}})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReadyStatusCodes(t *testing.T) {
	m := NewManager("test")
	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	m.Register(staticChecker{"down", CheckResult{Status: StatusUnhealthy, Error: "boom"}})
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "boom", resp.Checks["down"].Error)
}

func TestServeHealthVerbose(t *testing.T) {
	m := NewManager("1.2.3")
	m.Register(staticChecker{"ok", CheckResult{Status: StatusHealthy}})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Contains(t, resp.Checks, "ok")
}

func TestConnectionChecker(t *testing.T) {
	up := ConnectionChecker{Connected: func() bool { return true }}
	assert.Equal(t, StatusHealthy, up.Check(context.Background()).Status)

	down := ConnectionChecker{Connected: func() bool { return false }}
	assert.Equal(t, StatusDegraded, down.Check(context.Background()).Status)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestArchiveChecker(t *testing.T) {
	assert.Equal(t, StatusHealthy, ArchiveChecker{}.Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy,
		ArchiveChecker{Store: fakePinger{}}.Check(context.Background()).Status)

	result := ArchiveChecker{Store: fakePinger{err: errors.New("locked")}}.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "locked", result.Error)
}
