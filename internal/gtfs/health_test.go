package gtfs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/feed"
)

func TestIsReadyFollowsAvailability(t *testing.T) {
	mgr := newTestManager(t, newFakeLoader())

	assert.False(t, mgr.IsReady(), "nothing is loaded yet")
	assert.True(t, mgr.LastUpdated().IsZero())

	require.NoError(t, mgr.ForceUpdate(context.Background()))
	assert.True(t, mgr.IsReady())
	assert.False(t, mgr.LastUpdated().IsZero())

	mgr.MockSetState(feed.Agencies, StateFailed)
	assert.False(t, mgr.IsReady())
	assert.Equal(t, StateReady, mgr.Availability(feed.Stops, feed.StopRoutes), "other tables stay usable")
}

func TestReadersRaceReload(t *testing.T) {
	mgr := newTestManager(t, newFakeLoader())
	require.NoError(t, mgr.ForceUpdate(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ix, state := mgr.Snapshot(feed.Stops)
				if state == StateReady {
					_, ok := ix.StopByCode("21001")
					assert.True(t, ok)
				}
				_ = mgr.Status()
				_ = mgr.Availability()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			assert.NoError(t, mgr.ForceUpdate(context.Background()))
		}
	}()
	wg.Wait()

	assert.True(t, mgr.IsReady())
}
