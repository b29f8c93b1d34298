package domain

import "time"

// Bearing is one of four diagonal marker orientations, in degrees clockwise from north.
type Bearing int

const (
	BearingNE Bearing = 45
	BearingSE Bearing = 135
	BearingSW Bearing = 225
	BearingNW Bearing = 315
)

// Flip rotates the bearing by 180 degrees.
func (b Bearing) Flip() Bearing {
	return (b + 180) % 360
}

// Bucket returns the compass label of the bearing.
func (b Bearing) Bucket() string {
	switch b {
	case BearingNE:
		return "NE"
	case BearingSE:
		return "SE"
	case BearingSW:
		return "SW"
	case BearingNW:
		return "NW"
	}
	return ""
}

// RouteSummary is derived per request and used to frame the map.
type RouteSummary struct {
	DistanceKm float64  `json:"distance_km"`
	ZoomLevel  int      `json:"zoom_level"`
	Midpoint   GeoPoint `json:"midpoint"`
}

// WindSegment is a short great-circle path between two successive wind samples.
type WindSegment struct {
	From WeatherSample `json:"from"`
	To   WeatherSample `json:"to"`
	Path Route         `json:"path"`
}

// FlightPlan is everything the map renderer needs to draw one flight.
type FlightPlan struct {
	Start            GeoPoint        `json:"start"`
	End              GeoPoint        `json:"end"`
	Summary          RouteSummary    `json:"summary"`
	Path             Route           `json:"path"`
	MarkerPath       Route           `json:"marker_path"`
	DepartureBearing Bearing         `json:"departure_bearing"`
	ArrivalBearing   Bearing         `json:"arrival_bearing"`
	WindSamples      []WeatherSample `json:"wind_samples,omitempty"`
	WindSegments     []WindSegment   `json:"wind_segments,omitempty"`
	ComputedAt       time.Time       `json:"computed_at"`
}
