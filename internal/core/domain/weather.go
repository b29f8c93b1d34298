package domain

import (
	"regexp"
	"time"
)

var stationIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

// ValidStationID reports whether id is 1 to 64 letters, digits, '.', '_', ':'
// or '-', starting with a letter or digit.
func ValidStationID(id string) bool {
	return stationIDPattern.MatchString(id)
}

// WeatherSample is a wind observation at a coordinate. Samples are produced by
// the wind feed and only consumed when drawing overlays.
type WeatherSample struct {
	ID            string    `json:"id,omitempty"`
	Station       string    `json:"station,omitempty"`
	Coord         GeoPoint  `json:"coord"`
	WindDirection float64   `json:"wind_direction"` // degrees, meteorological (from)
	WindSpeed     float64   `json:"wind_speed"`     // km/h
	ObservedAt    time.Time `json:"observed_at"`
}
