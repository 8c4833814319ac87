package gtfs

import (
	"kavyashar.org/intake/internal/appconf"
)

// Config holds feed configuration for the manager.
type Config struct {
	// SourceKind is one of "http", "dir", "zip" or "bundle".
	SourceKind            string
	SourceURL             string
	StaticAuthHeaderKey   string
	StaticAuthHeaderValue string
	Env                   appconf.Environment
	Verbose               bool
}
