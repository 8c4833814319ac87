package restapi

import (
	"net/http"
	"strconv"
	"strings"
)

const maxListLimit = 50

// queryInt reads an optional integer parameter clamped to [min, max].
// A malformed value is reported in fieldErrors.
func queryInt(r *http.Request, name string, def, lo, hi int, fieldErrors map[string][]string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be an integer")
		return def
	}
	return min(max(v, lo), hi)
}

// queryFloat reads a required float parameter.
func queryFloat(r *http.Request, name string, fieldErrors map[string][]string) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		fieldErrors[name] = append(fieldErrors[name], "is required")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be a number")
	}
	return v
}
