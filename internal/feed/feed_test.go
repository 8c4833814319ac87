package feed

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stopsTxt = "\ufeffstop_id,stop_code,stop_name,stop_desc,stop_lat,stop_lon\r\n" +
	"1,21001,הרצל/רוטשילד,רחוב: הרצל עיר: תל אביב רציף:   קומה: ,32.0636,34.7726\r\n" +
	"2,21002,תחנה קצרה\r\n" +
	"\r\n" +
	"3,38831,מרכזית,רחוב: יפו 224 עיר: ירושלים רציף: 3 קומה: 2,31.7890,35.2030,extra\r\n" +
	"4,50001,no coords,,abc,\n"

const routesTxt = "route_id,agency_id,route_short_name,route_long_name,route_desc\n" +
	"100,3,5,ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-10#,5-1-#\n" +
	"101,3,5\n" +
	"102,5,18,תל אביב<->חיפה-33#,18-2-#\n"

const agencyTxt = "agency_id,agency_name\n3,אגד\n5,דן\n"

const stopRoutesCSV = "stop_id,routes\n" +
	"1,\"5,18, 480 ,,\"\n" +
	"3,5\n" +
	"bogus line\n" +
	"4,\"\"\n"

func TestParseStops(t *testing.T) {
	stops, stats, err := ParseStops(stopsTxt)
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 3, Dropped: 1}, stats)
	require.Len(t, stops, 3)

	assert.Equal(t, Stop{
		ID:   "1",
		Code: "21001",
		Name: "הרצל/רוטשילד",
		Desc: "רחוב: הרצל עיר: תל אביב רציף:   קומה: ",
		Lat:  32.0636,
		Lon:  34.7726,
		City: "תל אביב",
	}, stops[0])
	assert.Equal(t, "ירושלים", stops[1].City, "extra trailing fields are tolerated")
	assert.Equal(t, 0.0, stops[2].Lat)
	assert.Equal(t, "", stops[2].City)
}

func TestParseRoutesAndAgencies(t *testing.T) {
	routes, stats, err := ParseRoutes(routesTxt)
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 2, Dropped: 1}, stats)
	assert.Equal(t, "5", routes[0].ShortName)
	assert.Equal(t, "3", routes[0].AgencyID)
	assert.Equal(t, "18-2-#", routes[1].Desc)

	agencies, stats, err := ParseAgencies(agencyTxt)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, []Agency{{ID: "3", Name: "אגד"}, {ID: "5", Name: "דן"}}, agencies)
}

func TestParseStopRoutes(t *testing.T) {
	rows, stats, err := ParseStopRoutes(stopRoutesCSV)
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 3, Dropped: 1}, stats)
	assert.Equal(t, []StopLines{
		{StopID: "1", Lines: []string{"5", "18", "480"}},
		{StopID: "3", Lines: []string{"5"}},
		{StopID: "4", Lines: []string{}},
	}, rows)
}

func TestParseMalformedTables(t *testing.T) {
	tests := []struct {
		name  string
		table TableID
		text  string
	}{
		{"empty stops", Stops, ""},
		{"header only routes", Routes, "route_id,agency_id,route_short_name\n"},
		{"blank lines only agency", Agencies, "\n\n  \n"},
		{"header only mapping", StopRoutes, "stop_id,routes\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.table, tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFeedMalformed)

			var te *TableError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.table, te.Table)
			assert.Equal(t, "malformed", Reason(err))
		})
	}
}

func writeFeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stops.txt"), []byte(stopsTxt), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agency.txt"), []byte(agencyTxt), 0o600))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(routesTxt))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes.txt.gz"), buf.Bytes(), 0o600))
	return dir
}

func TestDirSource(t *testing.T) {
	loader := NewLoader(DirSource{Dir: writeFeedDir(t)})
	ctx := context.Background()

	res, err := loader.Load(ctx, Stops)
	require.NoError(t, err)
	assert.Len(t, res.Stops, 3)
	assert.Len(t, res.Checksum, 64)

	res, err = loader.Load(ctx, Routes)
	require.NoError(t, err, "gzip sibling is used when the plain file is missing")
	assert.Len(t, res.Routes, 2)

	_, err = loader.Load(ctx, StopRoutes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeedUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestZipSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"israel/stops.txt":          stopsTxt,
		"israel/stop_to_routes.csv": stopRoutesCSV,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	loader := NewLoader(ZipSource{Path: path})
	res, err := loader.Load(context.Background(), StopRoutes)
	require.NoError(t, err)
	assert.Len(t, res.StopRoutes, 3)

	_, err = loader.Load(context.Background(), Agencies)
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestHTTPSource(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("X-Api-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/gtfs/agency.txt":
			_, _ = w.Write([]byte(agencyTxt))
		case "/gtfs/routes.txt":
			_, _ = w.Write([]byte("route_id\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader, err := NewTableLoader("http", server.URL+"/gtfs/", "X-Api-Key", "secret")
	require.NoError(t, err)

	res, err := loader.Load(context.Background(), Agencies)
	require.NoError(t, err)
	assert.Len(t, res.Agencies, 2)

	_, err = loader.Load(context.Background(), Routes)
	assert.ErrorIs(t, err, ErrFeedMalformed)

	_, err = loader.Load(context.Background(), Stops)
	assert.ErrorIs(t, err, ErrFeedUnavailable)
	assert.Equal(t, "unavailable", Reason(err))

	unauth, err := NewTableLoader("http", server.URL+"/gtfs", "", "")
	require.NoError(t, err)
	_, err = unauth.Load(context.Background(), Agencies)
	assert.ErrorIs(t, err, ErrFeedUnavailable)
	assert.Equal(t, int32(4), hits.Load())
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(NewHTTPSource(server.URL, "", "")).Load(ctx, Stops)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewTableLoaderUnknownKind(t *testing.T) {
	_, err := NewTableLoader("ftp", "x", "", "")
	assert.Error(t, err)
}

func TestTablesMerge(t *testing.T) {
	var tables Tables
	tables.Merge(&TableResult{Table: Agencies, Agencies: []Agency{{ID: "3"}}})
	tables.Merge(&TableResult{Table: StopRoutes, StopRoutes: []StopLines{{StopID: "1"}}})
	tables.Merge(nil)

	assert.Len(t, tables.Agencies, 1)
	assert.Len(t, tables.StopRoutes, 1)
	assert.Nil(t, tables.Stops)
}

func TestTableFileNames(t *testing.T) {
	assert.Equal(t, "stops.txt", Stops.FileName())
	assert.Equal(t, "routes.txt", Routes.FileName())
	assert.Equal(t, "agency.txt", Agencies.FileName())
	assert.Equal(t, "stop_to_routes.csv", StopRoutes.FileName())
}
