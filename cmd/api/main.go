// Command api serves the complaint intake API and the complaint form.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"kavyashar.org/intake/internal/appconf"
	"kavyashar.org/intake/internal/gtfs"
	"kavyashar.org/intake/internal/logging"
)

func main() {
	var (
		configPath string
		envFlag    string
		port       int
		apiKeys    string
		dbPath     string
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&envFlag, "env", "", "Environment (development|test|production), overrides the file")
	flag.IntVar(&port, "port", 0, "API server port, overrides the file")
	flag.StringVar(&apiKeys, "api-keys", "", "Comma separated admin API keys, overrides the file")
	flag.StringVar(&dbPath, "db", "", "Complaint store path, overrides the file")
	flag.Parse()

	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	fileCfg, err := appconf.Load(configPath, os.LookupEnv)
	if err != nil {
		logging.LogError(slog.Default(), "failed to load configuration", err)
		os.Exit(1)
	}

	cfg := fileCfg.ToAppConfig()
	feedData := fileCfg.ToFeedConfigData()
	if envFlag != "" {
		cfg.Env = appconf.EnvFlagToEnvironment(envFlag)
		feedData.Env = cfg.Env
	}
	if port != 0 {
		cfg.Port = port
	}
	if apiKeys != "" {
		cfg.ApiKeys = ParseAPIKeys(apiKeys)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	gtfsCfg := gtfs.Config{
		SourceKind:            feedData.Kind,
		SourceURL:             feedData.URL,
		StaticAuthHeaderKey:   feedData.AuthHeaderKey,
		StaticAuthHeaderValue: feedData.AuthHeaderValue,
		Env:                   feedData.Env,
		Verbose:               feedData.Verbose,
	}

	coreApp, err := BuildApplication(cfg, gtfsCfg)
	if err != nil {
		logging.LogError(slog.Default(), "failed to build application", err)
		os.Exit(1)
	}
	slog.SetDefault(coreApp.Logger)

	coreApp.GtfsManager.StartLoad(feedLoadTimeout)

	srv, api := CreateServer(coreApp, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, srv, coreApp, api); err != nil {
		logging.LogError(coreApp.Logger, "server error", err)
		os.Exit(1)
	}
}
