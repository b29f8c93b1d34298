package geospatial

import "github.com/samirrijal/flightpath/internal/core/domain"

// ClassifyBearing buckets the direction from origin towards relative into one
// of the four diagonals, rotated by 180 degrees when flipped is set.
//
// A zero latitude delta counts as "not north" and a zero longitude delta as
// "not west", so co-located points resolve to SE (135).
func ClassifyBearing(origin, relative domain.GeoPoint, flipped bool) domain.Bearing {
	isNorth := relative.Lat-origin.Lat > 0
	isWest := relative.Lon-origin.Lon < 0

	var b domain.Bearing
	switch {
	case isNorth && isWest:
		b = domain.BearingNW
	case isNorth:
		b = domain.BearingNE
	case isWest:
		b = domain.BearingSW
	default:
		b = domain.BearingSE
	}

	if flipped {
		b = b.Flip()
	}
	return b
}
