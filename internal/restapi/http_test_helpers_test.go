package restapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/app"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/complaint"
	"kavyashar.org/intake/internal/datetime"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/metrics"
	"kavyashar.org/intake/internal/models"
)

const testAPIKey = "TEST"

// testNow is 10:00 in Jerusalem on the day the test complaints describe.
var testNow = time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)

func testTables() feed.Tables {
	return feed.Tables{
		Stops: []feed.Stop{
			{ID: "1", Code: "21001", Name: "הרצל/רוטשילד", City: "תל אביב", Lat: 32.0636, Lon: 34.7726},
			{ID: "2", Code: "21002", Name: "אלנבי/רוטשילד", City: "תל אביב", Lat: 32.0650, Lon: 34.7700},
			{ID: "3", Code: "38831", Name: "ת. מרכזית", City: "ירושלים", Lat: 31.7890, Lon: 35.2030},
		},
		Routes: []feed.Route{
			{ID: "100", AgencyID: "3", ShortName: "5", LongName: "ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-10#"},
			{ID: "101", AgencyID: "3", ShortName: "5", LongName: "מסוף רידינג-תל אביב יפו<->ת. מרכזית-ירושלים-20#"},
			{ID: "102", AgencyID: "5", ShortName: "18", LongName: "תל אביב<->חיפה-33#"},
			{ID: "103", AgencyID: "5", ShortName: "5", LongName: "בת ים-בת ים<->חולון-חולון-1#"},
		},
		Agencies: []feed.Agency{{ID: "3", Name: "אגד"}, {ID: "5", Name: "דן"}},
		StopRoutes: []feed.StopLines{
			{StopID: "1", Lines: []string{"5", "18"}},
			{StopID: "2", Lines: []string{"18"}},
			{StopID: "3", Lines: []string{"5"}},
		},
	}
}

type testEnv struct {
	api    *RestAPI
	server *httptest.Server
	clock  *clock.MockClock
}

// createTestEnv builds an application over an in-memory complaint store
// and a manager holding testTables.
func createTestEnv(t *testing.T) *testEnv {
	t.Helper()

	loc, err := time.LoadLocation(appconf.DefaultTimezone)
	require.NoError(t, err)
	mockClock := clock.NewMockClock(testNow)

	db, err := complaintdb.NewClient(complaintdb.NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	manager, err := gtfs.NewManager(gtfs.Config{SourceKind: "dir", SourceURL: t.TempDir()}, gtfs.WithClock(mockClock))
	require.NoError(t, err)
	manager.MockSetTables(testTables())

	temporal := datetime.NewValidator(mockClock, loc)
	a := &app.Application{
		Config: appconf.Config{
			Env:       appconf.Test,
			ApiKeys:   []string{testAPIKey},
			RateLimit: 100,
			Timezone:  appconf.DefaultTimezone,
		},
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		GtfsManager:        manager,
		ComplaintDB:        db,
		Temporal:           temporal,
		ComplaintValidator: complaint.NewValidator(temporal, manager),
		Clock:              mockClock,
		Metrics:            metrics.New(),
	}

	api := NewRestAPI(a)
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(RequestIDMiddleware(NewRequestLoggingMiddleware(a.Logger)(mux)))
	t.Cleanup(func() {
		server.Close()
		api.Shutdown()
		manager.Shutdown()
	})
	return &testEnv{api: api, server: server, clock: mockClock}
}

func createTestApi(t *testing.T) *RestAPI {
	return createTestEnv(t).api
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, models.ResponseModel) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return decodeResponse(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, body any) (*http.Response, models.ResponseModel) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(e.server.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) (*http.Response, models.ResponseModel) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var model models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
	return resp, model
}

// dataMap returns the data object of a response as a generic map.
func dataMap(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is %T", model.Data)
	return data
}

func entryMap(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	entry, ok := dataMap(t, model)["entry"].(map[string]any)
	require.True(t, ok, "entry is %T", dataMap(t, model)["entry"])
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []any {
	t.Helper()
	list, ok := dataMap(t, model)["list"].([]any)
	require.True(t, ok, "list is %T", dataMap(t, model)["list"])
	return list
}

func fieldErrorsOf(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	fe, ok := dataMap(t, model)["fieldErrors"].(map[string]any)
	require.True(t, ok)
	return fe
}
