package restapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kavyashar.org/intake/internal/locations"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/models"
)

func (api *RestAPI) citiesHandler(w http.ResponseWriter, r *http.Request) {
	if api.Locations == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "address lookup is not configured")
		return
	}
	cities, err := api.Locations.Cities(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		api.lookupFailed(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(cities, len(cities) == locations.MaxResults, "", api.Clock))
}

func (api *RestAPI) streetsHandler(w http.ResponseWriter, r *http.Request) {
	if api.Locations == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "address lookup is not configured")
		return
	}
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		api.validationErrorResponse(w, r, map[string][]string{"city": {"is required"}})
		return
	}
	streets, err := api.Locations.Streets(r.Context(), city, strings.TrimSpace(q.Get("q")))
	if err != nil {
		api.lookupFailed(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(streets, len(streets) == locations.MaxResults, "", api.Clock))
}

func (api *RestAPI) lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, locations.ErrLookupFailed) {
		api.serverErrorResponse(w, r, err)
		return
	}
	logging.LogError(api.requestLogger(r), "address lookup failed", err, slog.String("path", r.URL.Path))
	api.sendError(w, r, http.StatusBadGateway, "address lookup failed")
}
