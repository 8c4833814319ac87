package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultLocationsURL = "https://data.gov.il/api/3/action/datastore_search"

// FileConfig is the on-disk YAML shape of the configuration.
type FileConfig struct {
	Port           int            `yaml:"port" validate:"gte=0,lte=65535"`
	Env            string         `yaml:"env" validate:"omitempty,oneof=development test production"`
	ApiKeys        []string       `yaml:"api-keys"`
	Verbose        bool           `yaml:"verbose"`
	RateLimit      int            `yaml:"rate-limit" validate:"gte=0"`
	AllowedOrigins []string       `yaml:"allowed-origins"`
	DBPath         string         `yaml:"db-path"`
	Timezone       string         `yaml:"timezone"`
	FormAssetsDir  string         `yaml:"form-assets-dir"`
	Feed           FeedFileConfig `yaml:"feed"`
	Locations      LocationsFile  `yaml:"locations"`
	Webhook        WebhookFile    `yaml:"webhook"`
}

type FeedFileConfig struct {
	Kind            string `yaml:"kind" validate:"required,oneof=http dir zip bundle"`
	URL             string `yaml:"url" validate:"required"`
	AuthHeaderKey   string `yaml:"auth-header-key"`
	AuthHeaderValue string `yaml:"auth-header-value" validate:"required_with=AuthHeaderKey"`
}

type LocationsFile struct {
	BaseURL         string `yaml:"base-url" validate:"omitempty,url"`
	TimeoutSeconds  int    `yaml:"timeout-seconds" validate:"gte=0"`
	CacheSize       int    `yaml:"cache-size" validate:"gte=0"`
	CacheTTLMinutes int    `yaml:"cache-ttl-minutes" validate:"gte=0"`
}

type WebhookFile struct {
	URL            string `yaml:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `yaml:"timeout-seconds" validate:"gte=0"`
}

// FeedConfigData is the feed part of the file, handed to the GTFS manager
// by the caller.
type FeedConfigData struct {
	Kind            string
	URL             string
	AuthHeaderKey   string
	AuthHeaderValue string
	Env             Environment
	Verbose         bool
}

// DefaultFileConfig returns the values used for anything the file omits.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Port:      4000,
		Env:       "development",
		RateLimit: 100,
		DBPath:    "intake.db",
		Timezone:  DefaultTimezone,
		Feed:      FeedFileConfig{Kind: "dir"},
		Locations: LocationsFile{
			BaseURL:         DefaultLocationsURL,
			TimeoutSeconds:  10,
			CacheSize:       256,
			CacheTTLMinutes: 60,
		},
		Webhook: WebhookFile{TimeoutSeconds: 10},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and INTAKE_* variables, in that order, and validates the result.
func Load(path string, lookup func(string) (string, bool)) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}
	if lookup != nil {
		if err := cfg.ApplyEnvironment(lookup); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML configuration on top of the defaults. The
// result is not validated; see Validate.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of the defaults.
func Parse(data []byte) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the fields tags cannot express.
func (c *FileConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid configuration: timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// ApplyEnvironment overlays INTAKE_* variables onto the file values.
// lookup is normally os.LookupEnv.
func (c *FileConfig) ApplyEnvironment(lookup func(string) (string, bool)) error {
	if v, ok := lookup("INTAKE_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INTAKE_PORT: %w", err)
		}
		c.Port = port
	}
	if v, ok := lookup("INTAKE_ENV"); ok && v != "" {
		c.Env = v
	}
	if v, ok := lookup("INTAKE_API_KEYS"); ok && v != "" {
		c.ApiKeys = splitList(v)
	}
	if v, ok := lookup("INTAKE_ALLOWED_ORIGINS"); ok && v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("INTAKE_DB_PATH"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("INTAKE_WEBHOOK_URL"); ok && v != "" {
		c.Webhook.URL = v
	}
	if v, ok := lookup("INTAKE_FEED_KIND"); ok && v != "" {
		c.Feed.Kind = v
	}
	if v, ok := lookup("INTAKE_FEED_URL"); ok && v != "" {
		c.Feed.URL = v
	}
	if v, ok := lookup("INTAKE_FEED_AUTH_HEADER_KEY"); ok && v != "" {
		c.Feed.AuthHeaderKey = v
	}
	if v, ok := lookup("INTAKE_FEED_AUTH_HEADER_VALUE"); ok && v != "" {
		c.Feed.AuthHeaderValue = v
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *FileConfig) ToAppConfig() Config {
	return Config{
		Port:           c.Port,
		Env:            EnvFlagToEnvironment(c.Env),
		ApiKeys:        c.ApiKeys,
		Verbose:        c.Verbose,
		RateLimit:      c.RateLimit,
		AllowedOrigins: c.AllowedOrigins,
		DBPath:         c.DBPath,
		Timezone:       c.Timezone,
		FormAssetsDir:  c.FormAssetsDir,
		Locations: LocationsConfig{
			BaseURL:   c.Locations.BaseURL,
			Timeout:   time.Duration(c.Locations.TimeoutSeconds) * time.Second,
			CacheSize: c.Locations.CacheSize,
			CacheTTL:  time.Duration(c.Locations.CacheTTLMinutes) * time.Minute,
		},
		Webhook: WebhookConfig{
			URL:     c.Webhook.URL,
			Timeout: time.Duration(c.Webhook.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *FileConfig) ToFeedConfigData() FeedConfigData {
	return FeedConfigData{
		Kind:            c.Feed.Kind,
		URL:             c.Feed.URL,
		AuthHeaderKey:   c.Feed.AuthHeaderKey,
		AuthHeaderValue: c.Feed.AuthHeaderValue,
		Env:             EnvFlagToEnvironment(c.Env),
		Verbose:         c.Verbose,
	}
}
