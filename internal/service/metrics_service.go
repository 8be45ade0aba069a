package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/salon-reports-api/internal/models"
)

// Scan outcomes reported on scheduled_report_scans_total.
const (
	ScanOutcomeCompleted = "completed"
	ScanOutcomeFailed    = "failed"
	ScanOutcomeLocked    = "locked"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the report scanner.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	scanDuration    prometheus.Histogram
	scansTotal      *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	skippedTotal    *prometheus.CounterVec
	lastScan        prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduled_report_scan_duration_seconds",
		Help:    "Duration of one due-report scan pass",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	})

	scansTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_report_scans_total",
		Help: "Scan passes by outcome",
	}, []string{"outcome"})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_report_runs_total",
		Help: "Finished scheduled report runs by terminal status",
	}, []string{"status"})

	skippedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_report_skipped_total",
		Help: "Due reports skipped during a scan by reason",
	}, []string{"reason"})

	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduled_report_last_scan_timestamp_seconds",
		Help: "Unix time of the last completed scan pass",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		scanDuration, scansTotal, runsTotal, skippedTotal, lastScan, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		scanDuration:    scanDuration,
		scansTotal:      scansTotal,
		runsTotal:       runsTotal,
		skippedTotal:    skippedTotal,
		lastScan:        lastScan,
	}
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveScan records one scan pass.
func (m *MetricsService) ObserveScan(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcome).Inc()
	if outcome == ScanOutcomeLocked {
		return
	}
	m.scanDuration.Observe(duration.Seconds())
	m.lastScan.SetToCurrentTime()
}

// RecordRun counts a run reaching a terminal status.
func (m *MetricsService) RecordRun(status models.RunStatus) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(string(status)).Inc()
}

// RecordSkip counts a due report left for a later scan.
func (m *MetricsService) RecordSkip(reason string) {
	if m == nil {
		return
	}
	m.skippedTotal.WithLabelValues(reason).Inc()
}
