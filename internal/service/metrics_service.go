package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// MetricsService owns the Prometheus registry and keeps a few counters for the JSON snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	ledgerMutations *prometheus.CounterVec
	monthlySync     *prometheus.CounterVec
	events          *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	ledgerCount          uint64
	eventsPublished      uint64
	eventsFailed         uint64
	eventsDropped        uint64
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		ledgerMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Balance affecting operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		monthlySync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_monthly_sync_total",
			Help: "Monthly flag updates following a ledger mutation",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Ledger events handed to the broker",
		}, []string{"type", "outcome"}),
	}

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.ledgerMutations, m.monthlySync, m.events,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordLedgerMutation counts add/change/delete/adjust/reconcile operations.
func (m *MetricsService) RecordLedgerMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.ledgerMutations.WithLabelValues(operation, outcome(err)).Inc()
	if err == nil {
		atomic.AddUint64(&m.ledgerCount, 1)
	}
}

// RecordMonthlySync counts monthly flag writes that follow a ledger commit.
func (m *MetricsService) RecordMonthlySync(synced bool) {
	if m == nil {
		return
	}
	if synced {
		m.monthlySync.WithLabelValues("ok").Inc()
		return
	}
	m.monthlySync.WithLabelValues("error").Inc()
}

// RecordEvent counts broker publications.
func (m *MetricsService) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcome(err)).Inc()
	if err != nil {
		atomic.AddUint64(&m.eventsFailed, 1)
		return
	}
	atomic.AddUint64(&m.eventsPublished, 1)
}

// RecordEventDropped counts events abandoned after retries or at shutdown.
func (m *MetricsService) RecordEventDropped(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, "dropped").Inc()
	atomic.AddUint64(&m.eventsDropped, 1)
}

// Snapshot returns aggregated counters for the system metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if hits+misses > 0 {
		cacheRatio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		LedgerMutations:          atomic.LoadUint64(&m.ledgerCount),
		EventsPublished:          atomic.LoadUint64(&m.eventsPublished),
		EventsFailed:             atomic.LoadUint64(&m.eventsFailed),
		EventsDropped:            atomic.LoadUint64(&m.eventsDropped),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
