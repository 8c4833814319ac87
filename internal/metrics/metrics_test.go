package metrics

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.DBConnectionsOpen)
	assert.NotNil(t, m.FeedRowsLoaded)
	assert.NotNil(t, m.FeedRowsDropped)
	assert.NotNil(t, m.FeedLoadFailures)
	assert.NotNil(t, m.ComplaintsSubmitted)
	assert.NotNil(t, m.LocationsCacheHits)
}

func TestInstancesDoNotShareRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveComplaint("delay", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ComplaintsSubmitted.WithLabelValues("delay")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ComplaintsSubmitted.WithLabelValues("delay")))
}

func TestObserveFeedTable(t *testing.T) {
	m := New()
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	m.ObserveFeedTable("stops", 120, 3, at)
	m.ObserveFeedTable("stops", 118, 0, at.Add(time.Hour))

	assert.Equal(t, 118.0, testutil.ToFloat64(m.FeedRowsLoaded.WithLabelValues("stops")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FeedRowsDropped.WithLabelValues("stops")), "gauges reflect the last load")
	assert.Equal(t, float64(at.Add(time.Hour).Unix()), testutil.ToFloat64(m.FeedLastLoadSeconds.WithLabelValues("stops")))
}

func TestObserveFeedFailure(t *testing.T) {
	m := New()
	m.ObserveFeedFailure("routes", "unavailable")
	m.ObserveFeedFailure("routes", "unavailable")
	m.ObserveFeedFailure("agency", "malformed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedLoadFailures.WithLabelValues("routes", "unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedLoadFailures.WithLabelValues("agency", "malformed")))
}

func TestObserveComplaintAndCache(t *testing.T) {
	m := New()
	m.ObserveComplaint("no_ride", false)
	m.ObserveCacheLookup("cities", true)
	m.ObserveCacheLookup("cities", false)
	m.ObserveCacheLookup("cities", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComplaintsRejected.WithLabelValues("no_ride")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationsCacheHits.WithLabelValues("cities", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LocationsCacheHits.WithLabelValues("cities", "miss")))
}

func TestNilMetricsObserversAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFeedTable("stops", 1, 0, time.Now())
		m.ObserveFeedFailure("stops", "other")
		m.ObserveComplaint("other", true)
		m.ObserveCacheLookup("streets", true)
	})
}

func TestStartDBStatsCollector_NilDB(t *testing.T) {
	m := New()
	m.StartDBStatsCollector(nil, time.Second)
	assert.False(t, m.collectorStarted.Load())
}

func TestStartDBStatsCollector_IdempotentAndStoppable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m := New()
	m.StartDBStatsCollector(db, 20*time.Millisecond)
	m.StartDBStatsCollector(db, 20*time.Millisecond)
	assert.True(t, m.collectorStarted.Load())

	time.Sleep(60 * time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.DBConnectionsOpen), 0.0)

	done := make(chan struct{})
	go func() {
		m.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not complete within timeout")
	}

	m.Shutdown()
}
