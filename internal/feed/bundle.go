package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/OneBusAway/go-gtfs"
	"kavyashar.org/intake/internal/extract"
	"kavyashar.org/intake/internal/logging"
)

// BundleLoader serves the four tables out of one complete GTFS zip. The
// archive is fetched and parsed once and shared by every table until
// Refresh. The stop-to-lines mapping is derived from the trips' stop times.
type BundleLoader struct {
	location string
	http     *HTTPSource
	logger   *slog.Logger

	mu       sync.Mutex
	tables   *Tables
	stats    map[TableID]Stats
	checksum string
	err      error
}

func NewBundleLoader(location, authKey, authValue string) *BundleLoader {
	b := &BundleLoader{
		location: location,
		logger:   slog.Default().With(slog.String("component", "feed_bundle")),
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		b.http = NewHTTPSource(location, authKey, authValue)
	}
	return b
}

func (b *BundleLoader) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables, b.stats, b.checksum, b.err = nil, nil, "", nil
}

func (b *BundleLoader) Load(ctx context.Context, table TableID) (*TableResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tables == nil && b.err == nil {
		b.tables, b.stats, b.checksum, b.err = b.fetchAndParse(ctx)
	}
	if b.err != nil {
		return nil, &TableError{Table: table, Kind: kindOf(b.err), Err: b.err}
	}

	res := &TableResult{Table: table, Stats: b.stats[table], Checksum: b.checksum}
	switch table {
	case Stops:
		res.Stops = b.tables.Stops
	case Routes:
		res.Routes = b.tables.Routes
	case Agencies:
		res.Agencies = b.tables.Agencies
	case StopRoutes:
		res.StopRoutes = b.tables.StopRoutes
	default:
		return nil, malformed(table, fmt.Errorf("unknown table"))
	}
	return res, nil
}

func kindOf(err error) error {
	if Reason(err) == "malformed" {
		return ErrFeedMalformed
	}
	return ErrFeedUnavailable
}

func (b *BundleLoader) fetchAndParse(ctx context.Context) (*Tables, map[TableID]Stats, string, error) {
	data, err := b.fetch(ctx)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	tables, stats, err := ParseBundle(data)
	if err != nil {
		return nil, nil, "", err
	}
	for _, id := range AllTables {
		logTableStats(b.logger, id, stats[id])
	}
	return tables, stats, checksum(data), nil
}

func (b *BundleLoader) fetch(ctx context.Context) ([]byte, error) {
	if b.http == nil {
		data, err := os.ReadFile(b.location)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return data, nil
	}

	body, err := b.http.get(ctx, b.http.BaseURL)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(body, b.logger, "http_response_body")

	data, err := io.ReadAll(io.LimitReader(body, maxTableSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	if len(data) > maxTableSize {
		return nil, fmt.Errorf("static GTFS response exceeds size limit of %d bytes", maxTableSize)
	}
	return data, nil
}

// ParseBundle converts a GTFS zip into Tables. Stop cities are extracted
// from the stop description the same way as for the flat tables.
func ParseBundle(data []byte) (*Tables, map[TableID]Stats, error) {
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: error parsing GTFS data: %w", ErrFeedMalformed, err)
	}

	tables := &Tables{
		Stops:    make([]Stop, 0, len(static.Stops)),
		Routes:   make([]Route, 0, len(static.Routes)),
		Agencies: make([]Agency, 0, len(static.Agencies)),
	}

	for i := range static.Agencies {
		a := &static.Agencies[i]
		tables.Agencies = append(tables.Agencies, Agency{ID: a.Id, Name: a.Name})
	}

	for i := range static.Routes {
		r := &static.Routes[i]
		route := Route{ID: r.Id, ShortName: r.ShortName, LongName: r.LongName, Desc: r.Description}
		if r.Agency != nil {
			route.AgencyID = r.Agency.Id
		}
		tables.Routes = append(tables.Routes, route)
	}

	for i := range static.Stops {
		s := &static.Stops[i]
		stop := Stop{ID: s.Id, Code: s.Code, Name: s.Name, Desc: s.Description, City: extract.CityFromStopDesc(s.Description)}
		if s.Latitude != nil {
			stop.Lat = *s.Latitude
		}
		if s.Longitude != nil {
			stop.Lon = *s.Longitude
		}
		tables.Stops = append(tables.Stops, stop)
	}

	tables.StopRoutes = deriveStopLines(static)

	stats := map[TableID]Stats{
		Stops:      {Rows: len(tables.Stops)},
		Routes:     {Rows: len(tables.Routes)},
		Agencies:   {Rows: len(tables.Agencies)},
		StopRoutes: {Rows: len(tables.StopRoutes)},
	}
	return tables, stats, nil
}

// deriveStopLines builds the stop-to-lines mapping from scheduled trips.
// Stops keep first-seen order; lines per stop keep first-seen order.
func deriveStopLines(static *gtfs.Static) []StopLines {
	order := []string{}
	lines := map[string][]string{}
	seen := map[string]map[string]struct{}{}

	for i := range static.Trips {
		trip := &static.Trips[i]
		if trip.Route == nil || trip.Route.ShortName == "" {
			continue
		}
		line := trip.Route.ShortName
		for j := range trip.StopTimes {
			st := trip.StopTimes[j].Stop
			if st == nil {
				continue
			}
			set, ok := seen[st.Id]
			if !ok {
				set = map[string]struct{}{}
				seen[st.Id] = set
				order = append(order, st.Id)
			}
			if _, dup := set[line]; dup {
				continue
			}
			set[line] = struct{}{}
			lines[st.Id] = append(lines[st.Id], line)
		}
	}

	out := make([]StopLines, 0, len(order))
	for _, id := range order {
		out = append(out, StopLines{StopID: id, Lines: lines[id]})
	}
	return out
}
