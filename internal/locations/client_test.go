package locations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/metrics"
)

const citiesJSON = `{"success": true, "result": {"records": [
	{"_id": 1, "סמל_ישוב": "5000 ", "שם_ישוב": "תל אביב - יפו "},
	{"_id": 2, "סמל_ישוב": "3000", "שם_ישוב": "ירושלים"},
	{"_id": 3, "סמל_ישוב": "0", "שם_ישוב": "לא רשום"},
	{"_id": 4, "סמל_ישוב": "4000", "שם_ישוב": "חיפה"},
	{"_id": 5, "סמל_ישוב": "6600", "שם_ישוב": "חולון"}
]}}`

const streetsJSON = `{"success": true, "result": {"records": [
	{"_id": 10, "סמל_ישוב": 4000, "שם_ישוב": "חיפה ", "סמל_רחוב": 1, "שם_רחוב": "הרצל "},
	{"_id": 11, "סמל_ישוב": 4000, "שם_ישוב": "חיפה", "סמל_רחוב": 2, "שם_רחוב": "בלפור"},
	{"_id": 12, "סמל_ישוב": 4000, "שם_ישוב": "חיפה", "סמל_רחוב": 3, "שם_רחוב": "הרצל"},
	{"_id": 13, "סמל_ישוב": 4000, "שם_ישוב": "חיפה", "סמל_רחוב": 4, "שם_רחוב": "אלנבי"},
	{"_id": 14, "סמל_ישוב": 2600, "שם_ישוב": "אילת", "סמל_רחוב": 5, "שם_רחוב": "דרך חיפה"},
	{"_id": 15, "סמל_ישוב": 4000, "שם_ישוב": "חיפה", "סמל_רחוב": 6, "שם_רחוב": ""}
]}}`

type datastore struct {
	server *httptest.Server
	hits   atomic.Int32
	status atomic.Int32
}

func newDatastore(t *testing.T) *datastore {
	t.Helper()
	ds := &datastore{}
	ds.status.Store(http.StatusOK)
	ds.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds.hits.Add(1)
		if code := int(ds.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("resource_id") {
		case CitiesResourceID:
			assert.Equal(t, "2000", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(citiesJSON))
		case StreetsResourceID:
			assert.Equal(t, "חיפה", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(streetsJSON))
		default:
			_, _ = w.Write([]byte(`{"success": false}`))
		}
	}))
	t.Cleanup(ds.server.Close)
	return ds
}

func newTestClient(ds *datastore, m *metrics.Metrics) *Client {
	cfg := appconf.LocationsConfig{BaseURL: ds.server.URL, Timeout: time.Second}
	return NewClient(cfg, NewCache(16, time.Minute), m)
}

func TestCities(t *testing.T) {
	ds := newDatastore(t)
	m := metrics.New()
	client := newTestClient(ds, m)
	ctx := context.Background()

	all, err := client.Cities(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []City{
		{ID: 1, Name: "תל אביב - יפו", Code: "5000"},
		{ID: 2, Name: "ירושלים", Code: "3000"},
		{ID: 4, Name: "חיפה", Code: "4000"},
		{ID: 5, Name: "חולון", Code: "6600"},
	}, all)

	filtered, err := client.Cities(ctx, "ח")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	assert.Equal(t, int32(1), ds.hits.Load(), "the list is fetched once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationsCacheHits.WithLabelValues("cities", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationsCacheHits.WithLabelValues("cities", "hit")))

	client.Cache().Purge()
	_, err = client.Cities(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ds.hits.Load(), "purge forces a refetch")
}

func TestIsKnownCity(t *testing.T) {
	ds := newDatastore(t)
	client := newTestClient(ds, nil)

	assert.True(t, client.IsKnownCity(context.Background(), "חיפה"))
	assert.False(t, client.IsKnownCity(context.Background(), "גותהם"))

	ds.status.Store(http.StatusServiceUnavailable)
	client.Cache().Purge()
	assert.True(t, client.IsKnownCity(context.Background(), "גותהם"), "unknown list accepts any city")
}

func TestStreets(t *testing.T) {
	ds := newDatastore(t)
	client := newTestClient(ds, nil)
	ctx := context.Background()

	streets, err := client.Streets(ctx, "חיפה", "")
	require.NoError(t, err)
	names := make([]string, 0, len(streets))
	for _, s := range streets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"אלנבי", "בלפור", "הרצל"}, names, "deduplicated, other cities dropped, sorted")
	assert.Equal(t, "4000", streets[0].CityCode)

	streets, err = client.Streets(ctx, "חיפה", "רצ")
	require.NoError(t, err)
	require.Len(t, streets, 1)
	assert.Equal(t, "הרצל", streets[0].Name)
	assert.Equal(t, int32(1), ds.hits.Load())
	assert.Equal(t, 1, client.Cache().Len())

	streets, err = client.Streets(ctx, "  ", "הרצל")
	require.NoError(t, err)
	assert.Empty(t, streets)
}

func TestLookupFailures(t *testing.T) {
	ds := newDatastore(t)
	client := newTestClient(ds, nil)

	ds.status.Store(http.StatusBadGateway)
	_, err := client.Cities(context.Background(), "")
	assert.ErrorIs(t, err, ErrLookupFailed)

	_, err = client.Streets(context.Background(), "חיפה", "")
	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.Equal(t, 0, client.Cache().Len(), "failures are not cached")
}

func TestFilterLimit(t *testing.T) {
	items := make([]City, 120)
	for i := range items {
		items[i] = City{ID: i, Name: "עיר"}
	}
	assert.Len(t, filterLimit(items, "", func(c City) string { return c.Name }), MaxResults)
	assert.Empty(t, filterLimit(items, "כפר", func(c City) string { return c.Name }))
}

func TestNewCacheDefaults(t *testing.T) {
	c := NewCache(0, 0)
	c.setCities([]City{{Name: "חיפה"}})
	cities, ok := c.cities()
	require.True(t, ok)
	assert.Len(t, cities, 1)

	_, ok = c.streets("חיפה")
	assert.False(t, ok)
}
