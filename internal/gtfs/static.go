package gtfs

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/logging"
)

type tableOutcome struct {
	table  feed.TableID
	result *feed.TableResult
	err    error
}

// fetchTables loads every table concurrently. One table's failure does not
// affect the others.
func (m *Manager) fetchTables(ctx context.Context) []tableOutcome {
	outcomes := make([]tableOutcome, len(feed.AllTables))
	var wg sync.WaitGroup
	for i, t := range feed.AllTables {
		wg.Add(1)
		go func(i int, t feed.TableID) {
			defer wg.Done()
			res, err := m.loader.Load(ctx, t)
			outcomes[i] = tableOutcome{table: t, result: res, err: err}
		}(i, t)
	}
	wg.Wait()
	return outcomes
}

// ForceUpdate re-fetches all four tables, rebuilds the index and swaps it in.
//
// A table that fails on the first load is marked failed and stays empty. A
// table that fails on a later reload keeps serving its previous rows and
// stays ready; the error is still recorded and returned. Failed loads are
// not retried. The returned error joins every table failure.
func (m *Manager) ForceUpdate(ctx context.Context) error {
	m.updateMutex.Lock()
	defer m.updateMutex.Unlock()

	logger := slog.Default().With(slog.String("component", "gtfs_updater"))

	if r, ok := m.loader.(feed.Refresher); ok {
		r.Refresh()
	}

	outcomes := m.fetchTables(ctx)
	now := m.clock.Now()

	m.staticMutex.RLock()
	tables := m.tables
	status := maps.Clone(m.status)
	m.staticMutex.RUnlock()

	var errs []error
	for _, o := range outcomes {
		prev := status[o.table]
		if o.err != nil {
			errs = append(errs, o.err)
			reason := feed.Reason(o.err)
			next := TableStatus{State: StateFailed, Reason: reason, Error: o.err.Error()}
			if prev.State == StateReady {
				next = prev
				next.Reason, next.Error = reason, o.err.Error()
			}
			status[o.table] = next
			m.metrics.ObserveFeedFailure(string(o.table), reason)
			logging.LogError(logger, "feed table load failed", o.err,
				slog.String("table", string(o.table)),
				slog.String("reason", reason))
			continue
		}

		tables.Merge(o.result)
		status[o.table] = TableStatus{
			State:    StateReady,
			Rows:     o.result.Stats.Rows,
			Dropped:  o.result.Stats.Dropped,
			Checksum: o.result.Checksum,
			LoadedAt: now,
		}
		m.metrics.ObserveFeedTable(string(o.table), o.result.Stats.Rows, o.result.Stats.Dropped, now)
	}

	index := BuildIndex(tables)

	m.staticMutex.Lock()
	m.tables = tables
	m.index = index
	m.status = status
	m.lastUpdated = now
	m.staticMutex.Unlock()

	m.recordImports(ctx, status, now)

	logging.LogOperation(logger, "feed_index_swapped",
		slog.String("source", m.config.SourceURL),
		slog.Int("stops", len(tables.Stops)),
		slog.Int("routes", len(tables.Routes)),
		slog.Int("failed_tables", len(errs)))

	return errors.Join(errs...)
}

func (m *Manager) recordImports(ctx context.Context, status map[feed.TableID]TableStatus, at time.Time) {
	if m.recorder == nil {
		return
	}
	// Persist even if the load context has expired.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	imports := make([]complaintdb.FeedImport, 0, len(feed.AllTables))
	for _, t := range feed.AllTables {
		st := status[t]
		imports = append(imports, complaintdb.FeedImport{
			Table:       string(t),
			State:       string(st.State),
			Rows:        st.Rows,
			Dropped:     st.Dropped,
			ContentHash: st.Checksum,
			Error:       st.Error,
			Source:      m.config.SourceURL,
			ImportedAt:  at,
		})
	}
	if err := m.recorder.RecordFeedImports(ctx, imports); err != nil {
		logging.LogError(m.logger, "failed to record feed imports", err)
	}
}
