package restapi

import (
	"kavyashar.org/intake/internal/app"
)

// RestAPI serves the complaint form's JSON API on top of the shared
// Application.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

func NewRestAPI(a *app.Application) *RestAPI {
	api := &RestAPI{Application: a}
	if a != nil {
		api.rateLimiter = NewRateLimitMiddleware(a.Config.RateLimit, 0, a.Config.ApiKeys, a.Clock)
	}
	return api
}

// Shutdown stops the rate limiter's cleanup and waits for pending webhook
// deliveries.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
	if api.Application != nil {
		api.Webhook.Wait()
	}
}
