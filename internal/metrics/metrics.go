// Package metrics provides Prometheus metrics for the intake service.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	// Feed metrics, labelled by table
	FeedRowsLoaded      *prometheus.GaugeVec
	FeedRowsDropped     *prometheus.GaugeVec
	FeedLoadFailures    *prometheus.CounterVec
	FeedLastLoadSeconds *prometheus.GaugeVec

	// Intake metrics
	ComplaintsSubmitted *prometheus.CounterVec
	ComplaintsRejected  *prometheus.CounterVec
	LocationsCacheHits  *prometheus.CounterVec

	// logger for error reporting
	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	// cancel stops the DB stats collector goroutine
	cancel context.CancelFunc

	// wg tracks the DB stats collector goroutine for graceful shutdown
	wg sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	dbConnectionsOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "intake_db_connections_open",
		Help: "Number of open database connections",
	})

	dbConnectionsInUse := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "intake_db_connections_in_use",
		Help: "Number of database connections currently in use",
	})

	dbConnectionsIdle := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "intake_db_connections_idle",
		Help: "Number of idle database connections",
	})

	dbWaitSecondsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_db_wait_seconds_total",
		Help: "Total time blocked waiting for a database connection",
	})

	feedRowsLoaded := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intake_feed_rows_loaded",
		Help: "Rows kept by the last successful parse of each feed table",
	}, []string{"table"})

	feedRowsDropped := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intake_feed_rows_dropped",
		Help: "Rows dropped as malformed by the last parse of each feed table",
	}, []string{"table"})

	feedLoadFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_feed_load_failures_total",
		Help: "Feed table loads that failed, by reason",
	}, []string{"table", "reason"})

	feedLastLoadSeconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intake_feed_last_load_timestamp_seconds",
		Help: "Unix time of the last successful load of each feed table",
	}, []string{"table"})

	complaintsSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_complaints_submitted_total",
		Help: "Complaints accepted and stored, by complaint type",
	}, []string{"type"})

	complaintsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_complaints_rejected_total",
		Help: "Complaint submissions rejected by validation, by complaint type",
	}, []string{"type"})

	locationsCacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_locations_cache_lookups_total",
		Help: "Address lookup cache lookups, by kind and result",
	}, []string{"kind", "result"})

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		dbConnectionsOpen,
		dbConnectionsInUse,
		dbConnectionsIdle,
		dbWaitSecondsTotal,
		feedRowsLoaded,
		feedRowsDropped,
		feedLoadFailures,
		feedLastLoadSeconds,
		complaintsSubmitted,
		complaintsRejected,
		locationsCacheHits,
	)

	return &Metrics{
		Registry:            registry,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		DBConnectionsOpen:   dbConnectionsOpen,
		DBConnectionsInUse:  dbConnectionsInUse,
		DBConnectionsIdle:   dbConnectionsIdle,
		DBWaitSecondsTotal:  dbWaitSecondsTotal,
		FeedRowsLoaded:      feedRowsLoaded,
		FeedRowsDropped:     feedRowsDropped,
		FeedLoadFailures:    feedLoadFailures,
		FeedLastLoadSeconds: feedLastLoadSeconds,
		ComplaintsSubmitted: complaintsSubmitted,
		ComplaintsRejected:  complaintsRejected,
		LocationsCacheHits:  locationsCacheHits,
		logger:              logger,
	}
}

// StartDBStatsCollector starts a goroutine that periodically collects database
// connection pool statistics and updates the corresponding metrics.
// The interval specifies how often to collect stats.
// This method is idempotent - calling it multiple times has no effect after the first call.
// Call Shutdown() to stop the collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	// Prevent spawning multiple collectors
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	var lastWaitDuration time.Duration

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic in DB stats collector", "error", r)
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
				m.DBConnectionsIdle.Set(float64(stats.Idle))

				// Add the delta of wait duration since last check
				waitDelta := stats.WaitDuration - lastWaitDuration
				if waitDelta > 0 {
					m.DBWaitSecondsTotal.Add(waitDelta.Seconds())
				}
				lastWaitDuration = stats.WaitDuration

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector goroutine and waits for it to exit.
// This method is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// ObserveFeedTable records the outcome of parsing one feed table.
func (m *Metrics) ObserveFeedTable(table string, rows, dropped int, at time.Time) {
	if m == nil {
		return
	}
	m.FeedRowsLoaded.WithLabelValues(table).Set(float64(rows))
	m.FeedRowsDropped.WithLabelValues(table).Set(float64(dropped))
	m.FeedLastLoadSeconds.WithLabelValues(table).Set(float64(at.Unix()))
}

// ObserveFeedFailure counts a failed load of one feed table.
func (m *Metrics) ObserveFeedFailure(table, reason string) {
	if m == nil {
		return
	}
	m.FeedLoadFailures.WithLabelValues(table, reason).Inc()
}

// ObserveComplaint counts an accepted or rejected submission.
func (m *Metrics) ObserveComplaint(complaintType string, accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.ComplaintsSubmitted.WithLabelValues(complaintType).Inc()
		return
	}
	m.ComplaintsRejected.WithLabelValues(complaintType).Inc()
}

// ObserveCacheLookup counts an address lookup cache hit or miss.
func (m *Metrics) ObserveCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LocationsCacheHits.WithLabelValues(kind, result).Inc()
}
