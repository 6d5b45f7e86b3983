package utils

import (
	"math"
)

const (
	EarthRadiusKm = 6371.0
	DegToRad      = math.Pi / 180.0

	// AdvisorySpeedKmh is the flat speed used for ETA estimates.
	AdvisorySpeedKmh = 40.0
)

// DistanceKm returns the great-circle distance in kilometers between
// two coordinate pairs using the haversine formula. Callers must
// pre-validate coordinate presence and range.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * DegToRad
	lat2Rad := lat2 * DegToRad

	dlat := (lat2 - lat1) * DegToRad
	dlon := (lon2 - lon1) * DegToRad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// EstimateETAMinutes converts a straight-line distance into an
// advisory arrival estimate at AdvisorySpeedKmh.
func EstimateETAMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / AdvisorySpeedKmh * 60))
}

// IsValidCoordinate checks if latitude and longitude values are valid.
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
