// Package appconf holds the process-wide configuration: HTTP settings, the
// feed source, the complaint store, the address-lookup collaborator and
// the delivery webhook.
package appconf

import (
	"fmt"
	"time"
	_ "time/tzdata" // Asia/Jerusalem must resolve on minimal images
)

const DefaultTimezone = "Asia/Jerusalem"

type Config struct {
	Port           int
	Env            Environment
	ApiKeys        []string
	Verbose        bool
	RateLimit      int // requests per second per API key
	AllowedOrigins []string
	DBPath         string
	Timezone       string
	FormAssetsDir  string
	Locations      LocationsConfig
	Webhook        WebhookConfig
}

// WebhookConfig configures best-effort delivery of accepted complaints.
// An empty URL disables delivery.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// LocationsConfig configures the data.gov.il address lookup.
type LocationsConfig struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// Location resolves Timezone, defaulting to Israel time.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
