package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is matched by every *InvalidCoordinateError.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrAmbiguousGeodesic is matched by every *AmbiguousGeodesicError.
	ErrAmbiguousGeodesic = errors.New("ambiguous geodesic")

	// ErrInvalidSampleCount is returned when a route is requested with fewer
	// than two points or more than the configured maximum.
	ErrInvalidSampleCount = errors.New("invalid sample count")

	// ErrInvalidDivisor is returned when the marker truncation divisor is below 1.
	ErrInvalidDivisor = errors.New("invalid marker divisor")

	// ErrInvalidWeatherSample is returned for wind samples that cannot be stored.
	ErrInvalidWeatherSample = errors.New("invalid weather sample")
)

// InvalidCoordinateError reports a latitude or longitude outside its valid range.
type InvalidCoordinateError struct {
	Field string
	Value float64
}

func (e *InvalidCoordinateError) Error() string {
	switch e.Field {
	case "lat":
		return fmt.Sprintf("invalid coordinate: latitude %v must be between -90 and 90", e.Value)
	case "lon":
		return fmt.Sprintf("invalid coordinate: longitude %v must be between -180 and 180", e.Value)
	default:
		return fmt.Sprintf("invalid coordinate: %s=%v", e.Field, e.Value)
	}
}

func (e *InvalidCoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// AmbiguousGeodesicError is returned for antipodal endpoints, where infinitely
// many great circles connect the two points and no minor arc exists.
type AmbiguousGeodesicError struct {
	Start GeoPoint
	End   GeoPoint
}

func (e *AmbiguousGeodesicError) Error() string {
	return fmt.Sprintf("ambiguous geodesic: (%.6f, %.6f) and (%.6f, %.6f) are antipodal",
		e.Start.Lat, e.Start.Lon, e.End.Lat, e.End.Lon)
}

func (e *AmbiguousGeodesicError) Is(target error) bool {
	return target == ErrAmbiguousGeodesic
}
