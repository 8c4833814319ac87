package app

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the admin key when it is not in the query string.
const APIKeyHeader = "X-Api-Key"

// RequestAPIKey returns the key of r, preferring the header.
func RequestAPIKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	return r.URL.Query().Get("key")
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

// IsInvalidAPIKey compares key against every configured admin key in
// constant time. The empty key is always invalid.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	valid := false
	for _, k := range app.Config.ApiKeys {
		if k != "" && subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			valid = true
		}
	}
	return !valid
}
