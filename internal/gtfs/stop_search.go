package gtfs

import (
	"sort"
	"strings"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/utils"
)

const (
	defaultSearchLimit = 20
	maxNearbyRadius    = 5000.0
)

// NearbyStop is a stop with its distance in meters from the query point.
type NearbyStop struct {
	feed.Stop
	Distance float64 `json:"distance"`
}

// searchTerms splits user input into lower-cased terms. Every term must
// appear in a stop's name, code or city for the stop to match.
func searchTerms(input string) []string {
	return strings.Fields(strings.ToLower(input))
}

// SearchStops returns up to limit stops matching all terms of query, in
// feed order.
func (ix *Index) SearchStops(query string, limit int) []feed.Stop {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	terms := searchTerms(query)
	results := []feed.Stop{}
	if len(terms) == 0 {
		return results
	}

	for i, key := range ix.searchKeys {
		if matchesAll(key, terms) {
			results = append(results, ix.tables.Stops[i])
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

func matchesAll(key string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(key, t) {
			return false
		}
	}
	return true
}

// StopsNear returns stops within radius meters of (lat, lon), nearest first.
// The radius is capped at 5 km.
func (ix *Index) StopsNear(lat, lon, radius float64, limit int) []NearbyStop {
	if radius <= 0 || radius > maxNearbyRadius {
		radius = maxNearbyRadius
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	bounds := utils.CalculateBounds(lat, lon, radius)
	results := []NearbyStop{}
	ix.spatial.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, i int) bool {
			s := ix.tables.Stops[i]
			if d := utils.Distance(lat, lon, s.Lat, s.Lon); d <= radius {
				results = append(results, NearbyStop{Stop: s, Distance: d})
			}
			return true
		},
	)

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Distance != results[b].Distance {
			return results[a].Distance < results[b].Distance
		}
		return results[a].ID < results[b].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
