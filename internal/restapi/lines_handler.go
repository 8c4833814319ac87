package restapi

import (
	"net/http"
	"strings"

	"github.com/twpayne/go-polyline"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/models"
)

// linesHandler lists line numbers, all of them or those at one stop,
// filtered by a prefix of the number.
func (api *RestAPI) linesHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := map[string][]string{}
	limit := queryInt(r, "limit", maxListLimit, 1, maxListLimit, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	stopID := strings.TrimSpace(r.URL.Query().Get("stopId"))

	var lines []string
	var status models.Availability
	if stopID != "" {
		var ix *gtfs.Index
		ix, status = api.snapshot(w, feed.StopRoutes)
		lines = ix.RoutesForStop(stopID)
	} else {
		var ix *gtfs.Index
		ix, status = api.snapshot(w, feed.Routes)
		lines = ix.AllLineNumbers()
	}

	list := []string{}
	exceeded := false
	for _, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			continue
		}
		if len(list) == limit {
			exceeded = true
			break
		}
		list = append(list, l)
	}
	api.sendResponse(w, r, models.NewListResponse(list, exceeded, status, api.Clock))
}

// lineSnapshot resolves the {line} path value. A line missing from the
// tables read is answered with empty results, the same as a line with
// nothing to list; status tells the two apart from a table still loading.
func (api *RestAPI) lineSnapshot(w http.ResponseWriter, r *http.Request, tables ...feed.TableID) (*gtfs.Index, string, models.Availability) {
	ix, status := api.snapshot(w, tables...)
	return ix, strings.TrimSpace(r.PathValue("line")), status
}

func (api *RestAPI) lineRoutesHandler(w http.ResponseWriter, r *http.Request) {
	ix, line, status := api.lineSnapshot(w, r, feed.Routes)
	routes := ix.RoutesForLine(line)
	list := make([]models.Route, 0, len(routes))
	for _, rt := range routes {
		list = append(list, models.NewRoute(rt))
	}
	api.sendResponse(w, r, models.NewListResponse(list, false, status, api.Clock))
}

func (api *RestAPI) lineOperatorsHandler(w http.ResponseWriter, r *http.Request) {
	ix, line, status := api.lineSnapshot(w, r, feed.Routes, feed.Agencies)
	agencies := ix.OperatorsForLine(line)
	list := make([]models.Operator, 0, len(agencies))
	for _, a := range agencies {
		list = append(list, models.NewOperator(a))
	}
	api.sendResponse(w, r, models.NewListResponse(list, false, status, api.Clock))
}

func (api *RestAPI) lineAlternativesHandler(w http.ResponseWriter, r *http.Request) {
	ix, line, status := api.lineSnapshot(w, r, feed.Routes)
	operator := strings.TrimSpace(r.URL.Query().Get("operator"))
	api.sendResponse(w, r, models.NewListResponse(ix.Alternatives(line, operator), false, status, api.Clock))
}

func (api *RestAPI) lineCitiesHandler(w http.ResponseWriter, r *http.Request) {
	ix, line, status := api.lineSnapshot(w, r, feed.Routes)
	api.sendResponse(w, r, models.NewListResponse(ix.CitiesForLine(line), false, status, api.Clock))
}

// lineStopsHandler returns the stops of a line and an encoded polyline
// through the ones with coordinates.
func (api *RestAPI) lineStopsHandler(w http.ResponseWriter, r *http.Request) {
	ix, line, status := api.lineSnapshot(w, r, feed.Stops, feed.StopRoutes)

	stops := ix.StopsForLine(line)
	entry := models.LineStops{Line: line, Stops: make([]models.Stop, 0, len(stops))}
	coords := make([][]float64, 0, len(stops))
	for _, s := range stops {
		entry.Stops = append(entry.Stops, models.NewStop(s, nil))
		if s.Lat != 0 || s.Lon != 0 {
			coords = append(coords, []float64{s.Lat, s.Lon})
		}
	}
	entry.Polyline = string(polyline.EncodeCoords(coords))
	api.sendResponse(w, r, models.NewEntryResponse(entry, status, api.Clock))
}
