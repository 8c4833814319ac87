// Package utils holds small pure helpers shared by the index and the HTTP
// layer: distances and bounding boxes for the nearby-stops query, and the
// identifier checks used when validating a complaint.
package utils

import "math"

// RadiusOfEarthInMeters is the mean radius used for all distance math.
const RadiusOfEarthInMeters = 6371010.0

// CoordinateBounds is a lat/lon bounding box.
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// Distance returns the great-circle distance in meters. Points less than
// 0.2 degrees apart use the equirectangular approximation, which is what
// every stop-to-stop query in one country hits.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad, lat2Rad := toRadians(lat1), toRadians(lat2)

	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := toRadians(lon2-lon1) * math.Cos((lat1Rad+lat2Rad)/2)
		y := toRadians(lat2 - lat1)
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	deltaLon := toRadians(lon2 - lon1)
	y := math.Hypot(
		math.Cos(lat2Rad)*math.Sin(deltaLon),
		math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon),
	)
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)
	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// CalculateBounds returns the box that contains the circle of the given
// radius in meters around lat/lon.
func CalculateBounds(lat, lon, distance float64) CoordinateBounds {
	latOffset := distance / RadiusOfEarthInMeters * 180 / math.Pi
	lonOffset := distance / (math.Cos(toRadians(lat)) * RadiusOfEarthInMeters) * 180 / math.Pi
	return CalculateBoundsFromSpan(lat, lon, latOffset, lonOffset)
}

// CalculateBoundsFromSpan calculates a bounding box from lat/lon offsets.
func CalculateBoundsFromSpan(lat, lon, latOffset, lonOffset float64) CoordinateBounds {
	return CoordinateBounds{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLon: lon - lonOffset,
		MaxLon: lon + lonOffset,
	}
}

// IsOutOfBounds returns true only if the inner bounds have no overlap
// with the outer bounds.
func IsOutOfBounds(inner, outer CoordinateBounds) bool {
	return inner.MaxLat < outer.MinLat ||
		inner.MinLat > outer.MaxLat ||
		inner.MaxLon < outer.MinLon ||
		inner.MinLon > outer.MaxLon
}
