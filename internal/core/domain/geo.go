package domain

import "math"

// GeoPoint represents a geographic coordinate in degrees on a spherical Earth.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports an *InvalidCoordinateError when the point is outside
// [-90, 90] x [-180, 180] or is not a finite number.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return &InvalidCoordinateError{Field: "lat", Value: p.Lat}
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return &InvalidCoordinateError{Field: "lon", Value: p.Lon}
	}
	return nil
}

// Route is an ordered sequence of points along a great-circle arc.
type Route []GeoPoint

// First returns the first point, or the zero point for an empty route.
func (r Route) First() GeoPoint {
	if len(r) == 0 {
		return GeoPoint{}
	}
	return r[0]
}

// Last returns the last point, or the zero point for an empty route.
func (r Route) Last() GeoPoint {
	if len(r) == 0 {
		return GeoPoint{}
	}
	return r[len(r)-1]
}

// Reversed returns a copy of the route in the opposite direction.
func (r Route) Reversed() Route {
	out := make(Route, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Bounds represents a geographic bounding box. A box crossing the
// antimeridian has MinLon > MaxLon and spans MinLon..180 and -180..MaxLon.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// CrossesAntimeridian reports whether the box wraps past +/-180.
func (b Bounds) CrossesAntimeridian() bool {
	return b.MinLon > b.MaxLon
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Envelopes splits a wrapped box into its east and west halves. A box that
// does not cross the antimeridian is returned as is.
func (b Bounds) Envelopes() []Bounds {
	if !b.CrossesAntimeridian() {
		return []Bounds{b}
	}
	return []Bounds{
		{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: 180},
		{MinLat: b.MinLat, MinLon: -180, MaxLat: b.MaxLat, MaxLon: b.MaxLon},
	}
}
