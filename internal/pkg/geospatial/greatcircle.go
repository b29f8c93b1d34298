package geospatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/samirrijal/flightpath/internal/core/domain"
)

// geodesicEpsilon is the central-angle tolerance (radians) below which two
// points are treated as coincident, or as antipodal when measured from pi.
// arccos cannot resolve angles much smaller than ~1.5e-8 near ±1.
const geodesicEpsilon = 1e-7

// Interpolate returns n points along the minor great-circle arc from start to
// end, spaced evenly in arc length, using spherical linear interpolation of
// the unit Cartesian vectors. The first and last points are exactly start and
// end.
//
// Coincident endpoints yield n copies of start. Antipodal endpoints yield an
// *domain.AmbiguousGeodesicError.
func Interpolate(start, end domain.GeoPoint, n int) (domain.Route, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", domain.ErrInvalidSampleCount, n)
	}

	route := make(domain.Route, n)
	sigma := CentralAngle(start, end)

	if start == end || sigma < geodesicEpsilon {
		for i := range route {
			route[i] = start
		}
		route[n-1] = end
		return route, nil
	}
	if math.Pi-sigma < geodesicEpsilon {
		return nil, &domain.AmbiguousGeodesicError{Start: start, End: end}
	}

	v1 := toVector(start)
	v2 := toVector(end)
	sinSigma := math.Sin(sigma)
	steps := float64(n - 1)

	for i := 1; i < n-1; i++ {
		// (n-1-i)/steps rather than 1-t keeps end->start the exact mirror of start->end.
		a := math.Sin(float64(n-1-i)/steps*sigma) / sinSigma
		b := math.Sin(float64(i)/steps*sigma) / sinSigma
		route[i] = fromVector(v1.Mul(a).Add(v2.Mul(b)))
	}
	route[0] = start
	route[n-1] = end

	return route, nil
}

func toVector(p domain.GeoPoint) r3.Vector {
	lat, lon := ToRad(p.Lat), ToRad(p.Lon)
	return r3.Vector{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

func fromVector(v r3.Vector) domain.GeoPoint {
	lat := math.Atan2(v.Z, math.Sqrt(v.X*v.X+v.Y*v.Y))
	lon := math.Atan2(v.Y, v.X)
	return domain.GeoPoint{Lat: ToDeg(lat), Lon: ToDeg(lon)}
}
