package app

import (
	"log/slog"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/complaint"
	"kavyashar.org/intake/internal/datetime"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/locations"
	"kavyashar.org/intake/internal/metrics"
	"kavyashar.org/intake/internal/notify"
)

// Application holds the dependencies shared by the HTTP handlers,
// helpers and middleware. Locations and Webhook are optional.
type Application struct {
	Config             appconf.Config
	GtfsConfig         gtfs.Config
	Logger             *slog.Logger
	GtfsManager        *gtfs.Manager
	ComplaintDB        *complaintdb.Client
	Locations          *locations.Client
	Webhook            *notify.Webhook
	Temporal           *datetime.Validator
	ComplaintValidator *complaint.Validator
	Clock              clock.Clock
	Metrics            *metrics.Metrics
}
