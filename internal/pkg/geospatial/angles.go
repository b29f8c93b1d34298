package geospatial

import (
	"math"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// EarthRadiusKm is the mean Earth radius used for every spherical distance.
const EarthRadiusKm = 6371.0

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDeg converts radians to degrees.
func ToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Avg returns the arithmetic mean of two values.
func Avg(i, j float64) float64 {
	return (i + j) / 2
}

// Midpoint averages latitude and longitude independently. This is not the
// geodesic midpoint; map centering only needs an approximation.
func Midpoint(start, end domain.GeoPoint) domain.GeoPoint {
	return domain.GeoPoint{Lat: Avg(start.Lat, end.Lat), Lon: Avg(start.Lon, end.Lon)}
}
