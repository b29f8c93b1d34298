package geospatial

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// CentralAngle returns the angle in radians subtended at the Earth's centre by
// the two points, using the spherical law of cosines.
func CentralAngle(a, b domain.GeoPoint) float64 {
	lat1, lon1 := ToRad(a.Lat), ToRad(a.Lon)
	lat2, lon2 := ToRad(b.Lat), ToRad(b.Lon)

	c := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	// rounding can push c just outside [-1, 1]
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}

// DistanceKm returns the great-circle distance on a sphere of radius EarthRadiusKm.
func DistanceKm(a, b domain.GeoPoint) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// InitialBearing returns the forward azimuth from a to b in degrees [0, 360).
func InitialBearing(a, b domain.GeoPoint) float64 {
	phi1 := ToRad(a.Lat)
	phi2 := ToRad(b.Lat)
	deltaLon := ToRad(b.Lon - a.Lon)

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return math.Mod(ToDeg(math.Atan2(y, x))+360, 360)
}

// BoundsOf returns the bounding box of a route grown by padDeg on every side.
// Edges between consecutive points are bounded as great-circle arcs. A route
// crossing the antimeridian yields a box with MinLon > MaxLon, and a box that
// reaches a pole spans every longitude.
func BoundsOf(route domain.Route, padDeg float64) domain.Bounds {
	if len(route) == 0 {
		return domain.Bounds{}
	}
	bounder := s2.NewRectBounder()
	for _, p := range route {
		bounder.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)))
	}
	rect := bounder.RectBound()

	pad := ToRad(padDeg)
	lat := rect.Lat.Expanded(pad)
	lng := rect.Lng.Expanded(pad)
	if lat.Lo <= -math.Pi/2 || lat.Hi >= math.Pi/2 {
		lng = s1.FullInterval()
	}
	return domain.Bounds{
		MinLat: math.Max(-90, ToDeg(lat.Lo)),
		MinLon: ToDeg(lng.Lo),
		MaxLat: math.Min(90, ToDeg(lat.Hi)),
		MaxLon: ToDeg(lng.Hi),
	}
}
