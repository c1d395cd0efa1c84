package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("GET", "/api/v1/clients", 200, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordLedgerMutation("add_payment", nil)
	m.RecordLedgerMutation("add_payment", errors.New("boom"))
	m.RecordEvent("payment.added", nil)
	m.RecordEvent("payment.added", errors.New("nack"))

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.LedgerMutations)
	assert.Equal(t, uint64(1), snap.EventsPublished)
	assert.Equal(t, uint64(1), snap.EventsFailed)
}

func TestMetricsServiceHandlerExposesLedgerCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordLedgerMutation("delete_payment", nil)
	m.RecordMonthlySync(false)
	m.RecordEventDropped("payment.added")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ledger_mutations_total{operation="delete_payment",outcome="ok"} 1`))
	assert.True(t, strings.Contains(body, `ledger_monthly_sync_total{outcome="error"} 1`))
	assert.True(t, strings.Contains(body, `ledger_events_total{outcome="dropped",type="payment.added"} 1`))
	assert.Equal(t, uint64(1), m.Snapshot().EventsDropped)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordLedgerMutation("x", nil)
	m.RecordEvent("x", nil)
	m.RecordEventDropped("x")
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
