package feed

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"kavyashar.org/intake/internal/extract"
)

var errTooShort = errors.New("fewer than 2 lines")

// splitLines returns the non-blank lines of text with trailing carriage
// returns removed.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseSimple splits a header-plus-rows table on commas with no quote
// handling. Rows with fewer fields than the header are dropped and counted.
func parseSimple(table TableID, text string, mapRow func([]string)) (Stats, error) {
	var stats Stats

	lines := splitLines(text)
	if len(lines) < 2 {
		return stats, malformed(table, errTooShort)
	}

	header := strings.Split(strings.TrimPrefix(lines[0], "\ufeff"), ",")
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		if len(values) < len(header) {
			stats.Dropped++
			continue
		}
		mapRow(values)
		stats.Rows++
	}
	return stats, nil
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// field returns values[i] or "" when the header was shorter than the
// positional layout expects.
func field(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// ParseStops maps stop_id, stop_code, stop_name, stop_desc, stop_lat,
// stop_lon by position and derives City from stop_desc.
func ParseStops(text string) ([]Stop, Stats, error) {
	var stops []Stop
	stats, err := parseSimple(Stops, text, func(v []string) {
		desc := field(v, 3)
		stops = append(stops, Stop{
			ID:   field(v, 0),
			Code: field(v, 1),
			Name: field(v, 2),
			Desc: desc,
			Lat:  parseCoord(field(v, 4)),
			Lon:  parseCoord(field(v, 5)),
			City: extract.CityFromStopDesc(desc),
		})
	})
	return stops, stats, err
}

// ParseRoutes maps route_id, agency_id, route_short_name, route_long_name,
// route_desc by position.
func ParseRoutes(text string) ([]Route, Stats, error) {
	var routes []Route
	stats, err := parseSimple(Routes, text, func(v []string) {
		routes = append(routes, Route{
			ID:        field(v, 0),
			AgencyID:  field(v, 1),
			ShortName: field(v, 2),
			LongName:  field(v, 3),
			Desc:      field(v, 4),
		})
	})
	return routes, stats, err
}

// ParseAgencies maps agency_id, agency_name by position.
func ParseAgencies(text string) ([]Agency, Stats, error) {
	var agencies []Agency
	stats, err := parseSimple(Agencies, text, func(v []string) {
		agencies = append(agencies, Agency{ID: field(v, 0), Name: field(v, 1)})
	})
	return agencies, stats, err
}

var stopLinesRegex = regexp.MustCompile(`^(\d+),(.*)$`)

// ParseStopRoutes reads the stop-to-routes mapping: a numeric stop id, then
// an optionally quoted comma-joined list of line numbers. Lines without the
// leading digits are dropped and counted.
func ParseStopRoutes(text string) ([]StopLines, Stats, error) {
	var stats Stats

	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, stats, malformed(StopRoutes, errTooShort)
	}

	var out []StopLines
	for _, line := range lines[1:] {
		m := stopLinesRegex.FindStringSubmatch(line)
		if m == nil {
			stats.Dropped++
			continue
		}
		list := m[2]
		if len(list) >= 2 && strings.HasPrefix(list, `"`) && strings.HasSuffix(list, `"`) {
			list = list[1 : len(list)-1]
		}
		routes := []string{}
		for _, r := range strings.Split(list, ",") {
			if r = strings.TrimSpace(r); r != "" {
				routes = append(routes, r)
			}
		}
		out = append(out, StopLines{StopID: m[1], Lines: routes})
		stats.Rows++
	}
	return out, stats, nil
}

// Parse dispatches to the parser for table.
func Parse(table TableID, text string) (*TableResult, error) {
	res := &TableResult{Table: table}
	var err error
	switch table {
	case Stops:
		res.Stops, res.Stats, err = ParseStops(text)
	case Routes:
		res.Routes, res.Stats, err = ParseRoutes(text)
	case Agencies:
		res.Agencies, res.Stats, err = ParseAgencies(text)
	case StopRoutes:
		res.StopRoutes, res.Stats, err = ParseStopRoutes(text)
	default:
		return nil, malformed(table, errors.New("unknown table"))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
