package gtfs

import (
	"kavyashar.org/intake/internal/feed"
)

// MockSetTables replaces the loaded tables, rebuilds the index and marks
// every table ready.
func (m *Manager) MockSetTables(tables feed.Tables) {
	index := BuildIndex(tables)

	m.staticMutex.Lock()
	defer m.staticMutex.Unlock()

	m.tables = tables
	m.index = index
	counts := index.Counts()
	for _, t := range feed.AllTables {
		m.status[t] = TableStatus{State: StateReady, Rows: counts[t], LoadedAt: m.clock.Now()}
	}
}

// MockSetState overrides the load state of one table.
func (m *Manager) MockSetState(table feed.TableID, state LoadState) {
	m.staticMutex.Lock()
	defer m.staticMutex.Unlock()

	st := m.status[table]
	st.State = state
	m.status[table] = st
}
