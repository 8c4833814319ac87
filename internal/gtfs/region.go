package gtfs

import "kavyashar.org/intake/internal/feed"

// RegionBounds is the centre and span of the area covered by the feed's
// stops. The form's map picker opens on it.
type RegionBounds struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	LatSpan float64 `json:"latSpan"`
	LonSpan float64 `json:"lonSpan"`
}

// ComputeRegionBounds calculates the bounding box of all stops with
// coordinates. Returns nil if there are none.
func ComputeRegionBounds(stops []feed.Stop) *RegionBounds {
	var minLat, maxLat, minLon, maxLon float64
	first := true

	for _, s := range stops {
		if s.Lat == 0 && s.Lon == 0 {
			continue
		}
		if first {
			minLat, maxLat = s.Lat, s.Lat
			minLon, maxLon = s.Lon, s.Lon
			first = false
			continue
		}
		minLat = min(minLat, s.Lat)
		maxLat = max(maxLat, s.Lat)
		minLon = min(minLon, s.Lon)
		maxLon = max(maxLon, s.Lon)
	}

	if first {
		return nil
	}
	return &RegionBounds{
		Lat:     (minLat + maxLat) / 2,
		Lon:     (minLon + maxLon) / 2,
		LatSpan: maxLat - minLat,
		LonSpan: maxLon - minLon,
	}
}
