package restapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/complaint"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/models"
)

const reloadTimeout = 5 * time.Minute

// requireAPIKey guards the admin routes.
func (api *RestAPI) requireAPIKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		noStore(w)
		next(w, r)
	})
}

func (api *RestAPI) listComplaintsHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := map[string][]string{}
	q := r.URL.Query()
	params := complaintdb.ListParams{
		Type:   strings.TrimSpace(q.Get("type")),
		Search: strings.TrimSpace(q.Get("q")),
		Limit:  queryInt(r, "limit", 50, 1, 500, fieldErrors),
		Offset: queryInt(r, "offset", 0, 0, 1<<30, fieldErrors),
	}
	if params.Type != "" && !complaint.Type(params.Type).Valid() {
		fieldErrors["type"] = append(fieldErrors["type"], "unknown complaint type")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	recs, err := api.ComplaintDB.ListComplaints(r.Context(), params)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	list := make([]models.ComplaintSummary, 0, len(recs))
	for _, rec := range recs {
		list = append(list, models.NewComplaintSummary(rec))
	}

	exceeded := false
	if params.Search == "" {
		total, err := api.ComplaintDB.CountComplaints(r.Context(), params.Type)
		if err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
		exceeded = params.Offset+len(list) < total
	} else {
		exceeded = len(list) == params.Limit
	}
	api.sendResponse(w, r, models.NewListResponse(list, exceeded, "", api.Clock))
}

func (api *RestAPI) complaintDetailHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := api.ComplaintDB.GetComplaint(r.Context(), r.PathValue("ref"))
	if errors.Is(err, complaintdb.ErrNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewComplaintDetail(*rec), "", api.Clock))
}

// StatusUpdate moves a complaint through its handling workflow.
type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=new in_progress resolved rejected"`
}

func (api *RestAPI) updateComplaintStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdate
	fieldErrors, err := decodeBody(w, r, &req)
	if err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ref := r.PathValue("ref")
	err = api.ComplaintDB.UpdateComplaintStatus(r.Context(), ref, req.Status, api.Clock.Now())
	if errors.Is(err, complaintdb.ErrNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.complaintDetailHandler(w, r)
}

// reloadFeedHandler starts a reload of every table in the background and
// returns the status as it was when the reload began.
func (api *RestAPI) reloadFeedHandler(w http.ResponseWriter, r *http.Request) {
	api.GtfsManager.StartLoad(reloadTimeout)

	status := api.GtfsManager.Status()
	list := make([]models.TableStatus, 0, len(feed.AllTables))
	for _, t := range feed.AllTables {
		list = append(list, models.NewTableStatus(t, status[t]))
	}
	api.writeJSON(w, r, http.StatusAccepted, models.NewListResponse(list, false, "", api.Clock))
}
