package restapi

import (
	"net/http"
	"strings"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/models"
	"kavyashar.org/intake/internal/utils"
)

// snapshot reads the index with the availability of tables. Answers built
// from tables that are not ready are marked uncacheable.
func (api *RestAPI) snapshot(w http.ResponseWriter, tables ...feed.TableID) (*gtfs.Index, models.Availability) {
	ix, state := api.GtfsManager.Snapshot(tables...)
	status := models.AvailabilityOf(state)
	if status != models.Ready {
		noStore(w)
	}
	return ix, status
}

// stopHandler resolves a rider-entered stop code. A missing stop is only
// reported as not found once the stops table is ready; before that the
// entry is null and the status says why.
func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))
	ix, status := api.snapshot(w, feed.Stops)
	if status != models.Ready {
		api.sendResponse(w, r, models.NewEntryResponse(nil, status, api.Clock))
		return
	}

	stop, ok := ix.StopByCode(code)
	if !ok {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewStop(stop, ix.RoutesForStop(stop.ID)), status, api.Clock))
}

func (api *RestAPI) searchStopsHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := map[string][]string{}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		fieldErrors["q"] = append(fieldErrors["q"], "is required")
	}
	limit := queryInt(r, "limit", 20, 1, maxListLimit, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ix, status := api.snapshot(w, feed.Stops)
	stops := ix.SearchStops(query, limit+1)
	exceeded := len(stops) > limit
	if exceeded {
		stops = stops[:limit]
	}

	list := make([]models.Stop, 0, len(stops))
	for _, s := range stops {
		list = append(list, models.NewStop(s, nil))
	}
	api.sendResponse(w, r, models.NewListResponse(list, exceeded, status, api.Clock))
}

// nearbyStopsHandler lists stops around a point, nearest first. Points
// whose search box misses the feed's region return an empty list without
// touching the spatial index.
func (api *RestAPI) nearbyStopsHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := map[string][]string{}
	lat := queryFloat(r, "lat", fieldErrors)
	lon := queryFloat(r, "lon", fieldErrors)
	radius := float64(queryInt(r, "radius", 500, 1, 5000, fieldErrors))
	limit := queryInt(r, "limit", 20, 1, maxListLimit, fieldErrors)
	if lat < -90 || lat > 90 {
		fieldErrors["lat"] = append(fieldErrors["lat"], "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		fieldErrors["lon"] = append(fieldErrors["lon"], "must be between -180 and 180")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ix, status := api.snapshot(w, feed.Stops)
	list := []models.Stop{}
	if region := ix.Bounds(); region != nil {
		outer := utils.CalculateBoundsFromSpan(region.Lat, region.Lon, region.LatSpan/2, region.LonSpan/2)
		if !utils.IsOutOfBounds(utils.CalculateBounds(lat, lon, radius), outer) {
			for _, s := range ix.StopsNear(lat, lon, radius, limit) {
				list = append(list, models.NewNearbyStop(s))
			}
		}
	}
	api.sendResponse(w, r, models.NewListResponse(list, len(list) == limit, status, api.Clock))
}
