package restapi

import (
	"net/http"
)

// Cache lifetimes for public reads, in seconds.
const (
	feedCacheSeconds   = 300
	lookupCacheSeconds = 3600
	noCacheSeconds     = 0
)

// SetRoutes registers every endpoint on mux. Public routes are rate
// limited; admin routes require an API key.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	limited := func(h http.Handler) http.Handler {
		if api.rateLimiter == nil {
			return h
		}
		return api.rateLimiter.Handler()(h)
	}
	public := func(seconds int, h http.HandlerFunc) http.Handler {
		return limited(CacheControlMiddleware(seconds, h))
	}

	mux.HandleFunc("GET /healthz", api.healthHandler)
	mux.Handle("GET /metrics", api.metricsEndpoint())

	mux.Handle("GET /api/config", public(feedCacheSeconds, api.configHandler))
	mux.Handle("GET /api/feed/status", public(noCacheSeconds, api.feedStatusHandler))

	mux.Handle("GET /api/stops/search", public(feedCacheSeconds, api.searchStopsHandler))
	mux.Handle("GET /api/stops/nearby", public(feedCacheSeconds, api.nearbyStopsHandler))
	mux.Handle("GET /api/stops/{code}", public(feedCacheSeconds, api.stopHandler))

	mux.Handle("GET /api/lines", public(feedCacheSeconds, api.linesHandler))
	mux.Handle("GET /api/lines/{line}/routes", public(feedCacheSeconds, api.lineRoutesHandler))
	mux.Handle("GET /api/lines/{line}/operators", public(feedCacheSeconds, api.lineOperatorsHandler))
	mux.Handle("GET /api/lines/{line}/alternatives", public(feedCacheSeconds, api.lineAlternativesHandler))
	mux.Handle("GET /api/lines/{line}/cities", public(feedCacheSeconds, api.lineCitiesHandler))
	mux.Handle("GET /api/lines/{line}/stops", public(feedCacheSeconds, api.lineStopsHandler))

	mux.Handle("POST /api/form/events", public(noCacheSeconds, api.formEventHandler))
	mux.Handle("POST /api/datetime/validate", public(noCacheSeconds, api.validateDateTimeHandler))

	mux.Handle("GET /api/locations/cities", public(lookupCacheSeconds, api.citiesHandler))
	mux.Handle("GET /api/locations/streets", public(lookupCacheSeconds, api.streetsHandler))

	mux.Handle("POST /api/complaints", public(noCacheSeconds, api.submitComplaintHandler))
	mux.Handle("GET /api/complaints/{ref}", public(noCacheSeconds, api.complaintStatusHandler))

	mux.Handle("GET /api/admin/complaints", api.requireAPIKey(api.listComplaintsHandler))
	mux.Handle("GET /api/admin/complaints/{ref}", api.requireAPIKey(api.complaintDetailHandler))
	mux.Handle("POST /api/admin/complaints/{ref}/status", api.requireAPIKey(api.updateComplaintStatusHandler))
	mux.Handle("POST /api/admin/feed/reload", api.requireAPIKey(api.reloadFeedHandler))
}
