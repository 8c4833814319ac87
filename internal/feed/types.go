// Package feed fetches and parses the four static tables the intake form
// validates against: stops, routes, agencies and the stop-to-lines mapping.
package feed

// TableID names one of the feed tables.
type TableID string

const (
	Stops      TableID = "stops"
	Routes     TableID = "routes"
	Agencies   TableID = "agency"
	StopRoutes TableID = "stop_to_routes"
)

// AllTables lists every table in load order.
var AllTables = []TableID{Stops, Routes, Agencies, StopRoutes}

// FileName is the file the table is published as.
func (t TableID) FileName() string {
	if t == StopRoutes {
		return "stop_to_routes.csv"
	}
	return string(t) + ".txt"
}

type Stop struct {
	ID   string  `json:"stopId"`
	Code string  `json:"stopCode"`
	Name string  `json:"stopName"`
	Desc string  `json:"stopDesc"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

type Route struct {
	ID        string `json:"routeId"`
	AgencyID  string `json:"agencyId"`
	ShortName string `json:"routeShortName"`
	LongName  string `json:"routeLongName"`
	Desc      string `json:"routeDesc"`
}

type Agency struct {
	ID   string `json:"agencyId"`
	Name string `json:"agencyName"`
}

// StopLines is one row of the stop-to-routes mapping: the line numbers
// (route short names) serving a stop.
type StopLines struct {
	StopID string   `json:"stopId"`
	Lines  []string `json:"routes"`
}

// Stats counts what a parse kept and what it dropped.
type Stats struct {
	Rows    int `json:"rows"`
	Dropped int `json:"dropped"`
}

// Tables is one complete set of parsed rows.
type Tables struct {
	Stops      []Stop
	Routes     []Route
	Agencies   []Agency
	StopRoutes []StopLines
}

// TableResult carries the rows of a single table. Only the slice matching
// Table is populated.
type TableResult struct {
	Table      TableID
	Stats      Stats
	Checksum   string
	Stops      []Stop
	Routes     []Route
	Agencies   []Agency
	StopRoutes []StopLines
}

// Merge copies the populated slice of r into t.
func (t *Tables) Merge(r *TableResult) {
	if r == nil {
		return
	}
	switch r.Table {
	case Stops:
		t.Stops = r.Stops
	case Routes:
		t.Routes = r.Routes
	case Agencies:
		t.Agencies = r.Agencies
	case StopRoutes:
		t.StopRoutes = r.StopRoutes
	}
}
