package gtfs

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/rtree"
	"kavyashar.org/intake/internal/extract"
	"kavyashar.org/intake/internal/feed"
)

// Index answers every lookup the complaint form needs over one loaded feed.
// It is built once and never mutated, so it is safe for concurrent readers.
// Unknown keys yield empty results.
type Index struct {
	tables feed.Tables

	stopByCode map[string]int
	stopByID   map[string]int
	agencyByID map[string]int

	lineNumbers  []string
	routesByLine map[string][]int

	linesByStop map[string][]string
	stopsByLine map[string][]string

	searchKeys []string
	spatial    rtree.RTreeG[int]
	bounds     *RegionBounds
}

func BuildIndex(tables feed.Tables) *Index {
	ix := &Index{
		tables:       tables,
		stopByCode:   make(map[string]int, len(tables.Stops)),
		stopByID:     make(map[string]int, len(tables.Stops)),
		agencyByID:   make(map[string]int, len(tables.Agencies)),
		routesByLine: make(map[string][]int),
		searchKeys:   make([]string, len(tables.Stops)),
	}

	for i, s := range tables.Stops {
		ix.stopByCode[s.Code] = i
		ix.stopByID[s.ID] = i
		ix.searchKeys[i] = strings.ToLower(s.Name + " " + s.Code + " " + s.City)
		if s.Lat != 0 || s.Lon != 0 {
			ix.spatial.Insert([2]float64{s.Lon, s.Lat}, [2]float64{s.Lon, s.Lat}, i)
		}
	}

	for i, a := range tables.Agencies {
		if _, dup := ix.agencyByID[a.ID]; !dup {
			ix.agencyByID[a.ID] = i
		}
	}

	for i, r := range tables.Routes {
		if r.ShortName == "" {
			continue
		}
		if _, seen := ix.routesByLine[r.ShortName]; !seen {
			ix.lineNumbers = append(ix.lineNumbers, r.ShortName)
		}
		ix.routesByLine[r.ShortName] = append(ix.routesByLine[r.ShortName], i)
	}
	sort.SliceStable(ix.lineNumbers, func(a, b int) bool {
		return leadingInt(ix.lineNumbers[a]) < leadingInt(ix.lineNumbers[b])
	})

	ix.linesByStop, ix.stopsByLine = buildStopLineMaps(tables.StopRoutes)
	ix.bounds = ComputeRegionBounds(tables.Stops)
	return ix
}

// buildStopLineMaps derives both directions of the stop-line relation from
// one deduplicated view of the mapping, so they always agree. A stop listed
// twice keeps its last row.
func buildStopLineMaps(rows []feed.StopLines) (map[string][]string, map[string][]string) {
	order := make([]string, 0, len(rows))
	byStop := make(map[string][]string, len(rows))
	for _, row := range rows {
		if _, seen := byStop[row.StopID]; !seen {
			order = append(order, row.StopID)
		}
		lines := make([]string, 0, len(row.Lines))
		for _, l := range row.Lines {
			if !slices.Contains(lines, l) {
				lines = append(lines, l)
			}
		}
		byStop[row.StopID] = lines
	}

	byLine := make(map[string][]string)
	for _, stopID := range order {
		for _, l := range byStop[stopID] {
			byLine[l] = append(byLine[l], stopID)
		}
	}
	return byStop, byLine
}

// leadingInt reads an optionally signed integer prefix after leading
// whitespace. Names without one order as 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31 {
			break
		}
	}
	return sign * n
}

func (ix *Index) Tables() feed.Tables {
	return ix.tables
}

// Counts reports the number of rows per table.
func (ix *Index) Counts() map[feed.TableID]int {
	return map[feed.TableID]int{
		feed.Stops:      len(ix.tables.Stops),
		feed.Routes:     len(ix.tables.Routes),
		feed.Agencies:   len(ix.tables.Agencies),
		feed.StopRoutes: len(ix.tables.StopRoutes),
	}
}

func (ix *Index) StopByCode(code string) (feed.Stop, bool) {
	i, ok := ix.stopByCode[code]
	if !ok {
		return feed.Stop{}, false
	}
	return ix.tables.Stops[i], true
}

func (ix *Index) StopByID(id string) (feed.Stop, bool) {
	i, ok := ix.stopByID[id]
	if !ok {
		return feed.Stop{}, false
	}
	return ix.tables.Stops[i], true
}

func (ix *Index) AgencyByID(id string) (feed.Agency, bool) {
	i, ok := ix.agencyByID[id]
	if !ok {
		return feed.Agency{}, false
	}
	return ix.tables.Agencies[i], true
}

// AllLineNumbers returns each distinct line number once, ordered by numeric
// value. Ties keep feed order.
func (ix *Index) AllLineNumbers() []string {
	return slices.Clone(ix.lineNumbers)
}

func (ix *Index) HasLine(line string) bool {
	_, ok := ix.routesByLine[line]
	return ok
}

func (ix *Index) RoutesForLine(line string) []feed.Route {
	idx := ix.routesByLine[line]
	routes := make([]feed.Route, 0, len(idx))
	for _, i := range idx {
		routes = append(routes, ix.tables.Routes[i])
	}
	return routes
}

// OperatorsForLine returns the agencies running a line in the order their
// first route appears. Agency ids missing from the agency table are skipped.
func (ix *Index) OperatorsForLine(line string) []feed.Agency {
	operators := []feed.Agency{}
	seen := map[string]bool{}
	for _, i := range ix.routesByLine[line] {
		id := ix.tables.Routes[i].AgencyID
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := ix.AgencyByID(id); ok {
			operators = append(operators, a)
		}
	}
	return operators
}

// CitiesForLine collects the cities named in the long names of a line's
// routes, sorted, without single-character fragments.
func (ix *Index) CitiesForLine(line string) []string {
	cities := []string{}
	for _, i := range ix.routesByLine[line] {
		for _, c := range extract.CitiesFromLongName(ix.tables.Routes[i].LongName) {
			if utf8.RuneCountInString(c) > 1 && !slices.Contains(cities, c) {
				cities = append(cities, c)
			}
		}
	}
	sort.Strings(cities)
	return cities
}

// StopsForLine returns the stops whose mapped lines include line, in mapping
// order. Mapped stop ids absent from the stop table are skipped.
func (ix *Index) StopsForLine(line string) []feed.Stop {
	ids := ix.stopsByLine[line]
	stops := make([]feed.Stop, 0, len(ids))
	for _, id := range ids {
		if s, ok := ix.StopByID(id); ok {
			stops = append(stops, s)
		}
	}
	return stops
}

// RoutesForStop returns the line numbers serving a stop.
func (ix *Index) RoutesForStop(stopID string) []string {
	lines, ok := ix.linesByStop[stopID]
	if !ok {
		return []string{}
	}
	return slices.Clone(lines)
}

// LineServesStop reports whether the mapping links line and stop.
func (ix *Index) LineServesStop(line, stopID string) bool {
	return slices.Contains(ix.linesByStop[stopID], line)
}

// OperatesLine reports whether agencyID runs at least one route of line.
func (ix *Index) OperatesLine(line, agencyID string) bool {
	for _, i := range ix.routesByLine[line] {
		if ix.tables.Routes[i].AgencyID == agencyID {
			return true
		}
	}
	return false
}

func (ix *Index) Bounds() *RegionBounds {
	return ix.bounds
}
