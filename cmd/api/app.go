package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/app"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/complaint"
	"kavyashar.org/intake/internal/datetime"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/locations"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/metrics"
	"kavyashar.org/intake/internal/notify"
	"kavyashar.org/intake/internal/restapi"
	"kavyashar.org/intake/internal/webui"
)

// PinnedNowEnv names the variable that pins "now" outside production, in
// RFC3339 or as a local "2006-01-02 15:04".
const PinnedNowEnv = "INTAKE_PINNED_NOW"

const (
	feedLoadTimeout  = 5 * time.Minute
	dbStatsInterval  = 15 * time.Second
	shutdownDeadline = 30 * time.Second
)

// ParseAPIKeys splits a comma-separated key list and trims each entry.
func ParseAPIKeys(apiKeysFlag string) []string {
	if apiKeysFlag == "" {
		return []string{}
	}
	keys := strings.Split(apiKeysFlag, ",")
	for i, key := range keys {
		keys[i] = strings.TrimSpace(key)
	}
	return keys
}

// BuildApplication wires the complaint store, the feed manager and the
// complaint validation around cfg. The feed is not loaded; callers start
// it with GtfsManager.StartLoad.
func BuildApplication(cfg appconf.Config, gtfsCfg gtfs.Config) (*app.Application, error) {
	logger := logging.NewLogger(cfg.Env == appconf.Production, cfg.Verbose)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var appClock clock.Clock = clock.RealClock{Location: loc}
	if cfg.Env != appconf.Production {
		appClock = clock.NewPinnedClock(PinnedNowEnv, loc, appClock, os.LookupEnv)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := complaintdb.NewClient(complaintdb.NewConfig(dbPath, cfg.Env, cfg.Verbose))
	if err != nil {
		return nil, fmt.Errorf("failed to open complaint store: %w", err)
	}

	appMetrics := metrics.NewWithLogger(logger)
	appMetrics.StartDBStatsCollector(db.DB, dbStatsInterval)

	manager, err := gtfs.NewManager(gtfsCfg,
		gtfs.WithClock(appClock),
		gtfs.WithMetrics(appMetrics),
		gtfs.WithImportRecorder(db),
	)
	if err != nil {
		appMetrics.Shutdown()
		logging.SafeCloseWithLogging(db, logger, "complaint_store")
		return nil, fmt.Errorf("failed to initialize GTFS manager: %w", err)
	}

	temporal := datetime.NewValidator(appClock, loc)

	var locationsClient *locations.Client
	if cfg.Locations.BaseURL != "" {
		cache := locations.NewCache(cfg.Locations.CacheSize, cfg.Locations.CacheTTL)
		locationsClient = locations.NewClient(cfg.Locations, cache, appMetrics)
	}

	return &app.Application{
		Config:             cfg,
		GtfsConfig:         gtfsCfg,
		Logger:             logger,
		GtfsManager:        manager,
		ComplaintDB:        db,
		Locations:          locationsClient,
		Webhook:            notify.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Timeout),
		Temporal:           temporal,
		ComplaintValidator: complaint.NewValidator(temporal, manager),
		Clock:              appClock,
		Metrics:            appMetrics,
	}, nil
}

// CreateServer registers the JSON API and the web UI on one mux and wraps
// it in the shared middleware chain.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	api.SetRoutes(mux)

	webUI := &webui.WebUI{Application: coreApp}
	webUI.SetWebUIRoutes(mux)

	var handler http.Handler = gzhttp.GzipHandler(mux)
	handler = restapi.NewCORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = restapi.MetricsHandler(coreApp.Metrics)(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api
}

// Run serves until ctx is done, then drains connections and releases the
// application's resources.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := coreApp.Logger

	serverErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "starting_server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case err := <-serverErr:
		runErr = err
	case <-ctx.Done():
		logging.LogOperation(logger, "shutting_down_server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "server forced to shutdown", err)
		if runErr == nil {
			runErr = err
		}
	}

	api.Shutdown()
	coreApp.GtfsManager.Shutdown()
	coreApp.Metrics.Shutdown()
	logging.SafeCloseWithLogging(coreApp.ComplaintDB, logger, "complaint_store")

	logging.LogOperation(logger, "server_exited")
	return runErr
}
