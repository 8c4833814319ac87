package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/metrics"
)

// LoadState is the tri-state of one feed table.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

// TableStatus describes the last load of one table.
type TableStatus struct {
	State    LoadState `json:"state"`
	Rows     int       `json:"rows"`
	Dropped  int       `json:"dropped"`
	Checksum string    `json:"checksum,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitzero"`
}

// ImportRecorder persists the outcome of each table load.
type ImportRecorder interface {
	RecordFeedImports(ctx context.Context, imports []complaintdb.FeedImport) error
}

// Manager owns the feed loader, the per-table load state and the current
// Index. Queries read a consistent snapshot under staticMutex; reloads are
// serialized by updateMutex and swap the index under the write lock.
type Manager struct {
	config   Config
	loader   feed.TableLoader
	clock    clock.Clock
	metrics  *metrics.Metrics
	recorder ImportRecorder
	logger   *slog.Logger

	staticMutex sync.RWMutex
	updateMutex sync.Mutex
	index       *Index
	tables      feed.Tables
	status      map[feed.TableID]TableStatus
	lastUpdated time.Time

	wg           sync.WaitGroup
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

type Option func(*Manager)

func WithLoader(loader feed.TableLoader) Option {
	return func(m *Manager) { m.loader = loader }
}

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithImportRecorder(r ImportRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// NewManager creates a manager with every table loading and an empty index.
// Nothing is fetched until StartLoad or ForceUpdate.
func NewManager(config Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		config:       config,
		clock:        clock.RealClock{},
		logger:       slog.Default().With(slog.String("component", "gtfs_manager")),
		index:        BuildIndex(feed.Tables{}),
		status:       make(map[feed.TableID]TableStatus, len(feed.AllTables)),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.loader == nil {
		loader, err := feed.NewTableLoader(config.SourceKind, config.SourceURL, config.StaticAuthHeaderKey, config.StaticAuthHeaderValue)
		if err != nil {
			return nil, fmt.Errorf("failed to create feed loader: %w", err)
		}
		m.loader = loader
	}

	for _, t := range feed.AllTables {
		m.status[t] = TableStatus{State: StateLoading}
	}
	return m, nil
}

// InitManager creates a manager and performs the first load synchronously.
// Per-table failures are reflected in Status, not returned.
func InitManager(ctx context.Context, config Config, opts ...Option) (*Manager, error) {
	m, err := NewManager(config, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.ForceUpdate(ctx); err != nil && config.Verbose {
		logging.LogError(m.logger, "initial feed load incomplete", err)
	}
	return m, nil
}

// StartLoad runs the first load in the background.
func (m *Manager) StartLoad(timeout time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		go func() {
			select {
			case <-m.shutdownChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := m.ForceUpdate(ctx); err != nil {
			logging.LogError(m.logger, "initial feed load incomplete", err,
				slog.String("source", m.config.SourceURL))
		}
	}()
}

// Index returns the current index. It is immutable and may be used after
// the call returns.
func (m *Manager) Index() *Index {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()
	return m.index
}

func (m *Manager) Status() map[feed.TableID]TableStatus {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()
	return maps.Clone(m.status)
}

// Availability folds the states of the tables a query depends on: failed if
// any failed, loading if any is still loading, ready otherwise.
func (m *Manager) Availability(tables ...feed.TableID) LoadState {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()
	return m.availabilityLocked(tables)
}

func (m *Manager) availabilityLocked(tables []feed.TableID) LoadState {
	state := StateReady
	for _, t := range tables {
		switch m.status[t].State {
		case StateFailed:
			return StateFailed
		case StateLoading:
			state = StateLoading
		}
	}
	return state
}

// Snapshot returns the index together with the availability of tables,
// read under one lock.
func (m *Manager) Snapshot(tables ...feed.TableID) (*Index, LoadState) {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()
	return m.index, m.availabilityLocked(tables)
}

// IsReady reports whether every table has loaded.
func (m *Manager) IsReady() bool {
	return m.Availability(feed.AllTables...) == StateReady
}

func (m *Manager) LastUpdated() time.Time {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()
	return m.lastUpdated
}

// Shutdown cancels a background load and waits for it to finish.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
	})
	m.wg.Wait()
}
