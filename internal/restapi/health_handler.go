package restapi

import (
	"net/http"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/models"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string                         `json:"status"`
	Detail string                         `json:"detail,omitempty"`
	Feed   map[string]models.Availability `json:"feed,omitempty"`
}

// healthHandler fails only when complaints cannot be stored. Feed tables
// that are loading or failed are reported but keep the service up, since
// complaints are accepted without the cross-checks.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	if api.Application == nil || api.GtfsManager == nil || api.ComplaintDB == nil || api.ComplaintDB.DB == nil {
		api.writeJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "manager or database not initialized",
		})
		return
	}

	if err := api.ComplaintDB.DB.PingContext(r.Context()); err != nil {
		logging.LogError(api.Logger, "complaint DB ping failed", err)
		api.writeJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "database connection failed",
		})
		return
	}

	resp := HealthResponse{Status: "ok", Feed: map[string]models.Availability{}}
	for table, st := range api.GtfsManager.Status() {
		resp.Feed[string(table)] = models.AvailabilityOf(st.State)
	}
	switch api.GtfsManager.Availability(feed.AllTables...) {
	case gtfs.StateLoading:
		resp.Status = "starting"
		resp.Detail = "feed tables are loading"
	case gtfs.StateFailed:
		resp.Status = "degraded"
		resp.Detail = "some feed tables failed to load"
	}
	api.writeJSON(w, r, http.StatusOK, resp)
}
