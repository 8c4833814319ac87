package restapi

import (
	"net/http"

	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/models"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	tz := api.Config.Timezone
	if tz == "" {
		tz = appconf.DefaultTimezone
	}
	entry := models.ConfigModel{
		GitProperties:  models.NewGitProperties(),
		Id:             "kavyashar-intake",
		Name:           "Public Transport Complaint Intake",
		Timezone:       tz,
		ComplaintTypes: models.NewComplaintTypes(),
	}

	ix, state := api.GtfsManager.Snapshot(feed.Stops)
	status := models.AvailabilityOf(state)
	if status == models.Ready {
		entry.Region = ix.Bounds()
	} else {
		noStore(w)
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, status, api.Clock))
}

func (api *RestAPI) feedStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := api.GtfsManager.Status()
	list := make([]models.TableStatus, 0, len(feed.AllTables))
	for _, t := range feed.AllTables {
		list = append(list, models.NewTableStatus(t, status[t]))
	}
	api.sendResponse(w, r, models.NewListResponse(list, false,
		models.AvailabilityOf(api.GtfsManager.Availability(feed.AllTables...)), api.Clock))
}
