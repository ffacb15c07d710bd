package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a point-in-time summary of the process counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	GeneratorRuns            uint64    `json:"generatorRuns"`
	SessionsPlaced           uint64    `json:"sessionsPlaced"`
	SessionsUnplaced         uint64    `json:"sessionsUnplaced"`
	MutationsAccepted        uint64    `json:"mutationsAccepted"`
	MutationsRejected        uint64    `json:"mutationsRejected"`
	ActiveDrafts             int64     `json:"activeDrafts"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	generatorDuration prometheus.Histogram
	generatorSessions *prometheus.CounterVec
	mutationTotal     *prometheus.CounterVec
	activeDraftsGauge prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	generatorRunCount    uint64
	placedCount          uint64
	unplacedCount        uint64
	acceptedCount        uint64
	rejectedCount        uint64
	activeDrafts         int64
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

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	generatorDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Duration of timetable generation runs",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
	})

	generatorSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generated_sessions_total",
		Help: "Sessions requested from the generator by outcome",
	}, []string{"outcome"})

	mutationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_mutations_total",
		Help: "Manual slot mutations by operation and result code",
	}, []string{"operation", "result"})

	activeDrafts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_active_drafts",
		Help: "Drafts currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		generatorDuration, generatorSessions, mutationTotal, activeDrafts, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		generatorDuration: generatorDuration,
		generatorSessions: generatorSessions,
		mutationTotal:     mutationTotal,
		activeDraftsGauge: activeDrafts,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveGeneration records one generator run.
func (m *MetricsService) ObserveGeneration(placed, unplaced int, duration time.Duration) {
	if m == nil {
		return
	}
	m.generatorDuration.Observe(duration.Seconds())
	m.generatorSessions.WithLabelValues("placed").Add(float64(placed))
	m.generatorSessions.WithLabelValues("unplaced").Add(float64(unplaced))
	atomic.AddUint64(&m.generatorRunCount, 1)
	atomic.AddUint64(&m.placedCount, uint64(placed))
	atomic.AddUint64(&m.unplacedCount, uint64(unplaced))
}

// RecordMutation counts a manual add, edit or remove. An empty result code means it was accepted.
func (m *MetricsService) RecordMutation(operation, resultCode string) {
	if m == nil {
		return
	}
	if resultCode == "" {
		resultCode = "OK"
		atomic.AddUint64(&m.acceptedCount, 1)
	} else {
		atomic.AddUint64(&m.rejectedCount, 1)
	}
	m.mutationTotal.WithLabelValues(operation, resultCode).Inc()
}

// SetActiveDrafts publishes the number of drafts held in memory.
func (m *MetricsService) SetActiveDrafts(n int) {
	if m == nil {
		return
	}
	atomic.StoreInt64(&m.activeDrafts, int64(n))
	m.activeDraftsGauge.Set(float64(n))
}

// Snapshot returns aggregated metrics suitable for status endpoints.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            cacheRatio,
		GeneratorRuns:            atomic.LoadUint64(&m.generatorRunCount),
		SessionsPlaced:           atomic.LoadUint64(&m.placedCount),
		SessionsUnplaced:         atomic.LoadUint64(&m.unplacedCount),
		MutationsAccepted:        atomic.LoadUint64(&m.acceptedCount),
		MutationsRejected:        atomic.LoadUint64(&m.rejectedCount),
		ActiveDrafts:             atomic.LoadInt64(&m.activeDrafts),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
