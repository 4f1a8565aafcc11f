package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func staticChecker(status Status, message string) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		return Check{Status: status, Message: message, LastChecked: time.Now()}
	})
}

func TestCheckAllHealthy(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("a", staticChecker(StatusHealthy, ""))
	hc.Register("b", staticChecker(StatusHealthy, ""))

	resp := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestCheckUnhealthyWins(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("ok", staticChecker(StatusHealthy, ""))
	hc.Register("bad", staticChecker(StatusUnhealthy, "connection refused"))

	resp := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestCheckDegradedDoesNotOverrideUnhealthy(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("bad", staticChecker(StatusUnhealthy, ""))
	hc.Register("slow", staticChecker(StatusDegraded, ""))

	resp := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestCheckUsesCache(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(time.Minute)

	calls := 0
	hc.Register("counter", CheckerFunc(func(ctx context.Context) Check {
		calls++
		return Check{Status: StatusHealthy}
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())

	assert.Equal(t, 1, calls)
}

func TestHandlerStatusCodes(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("bad", staticChecker(StatusUnhealthy, "down"))

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestLivenessAlwaysOK(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.Register("bad", staticChecker(StatusUnhealthy, "down"))

	rec := httptest.NewRecorder()
	hc.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessRequiresHealthy(t *testing.T) {
	hc := New("1.0.0", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("slow", staticChecker(StatusDegraded, "pool pressure"))

	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
