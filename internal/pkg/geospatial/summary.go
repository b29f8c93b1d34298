package geospatial

import "github.com/samirrijal/flightpath/internal/core/domain"

// Summarize computes the distance, zoom and map centre of a flight.
func Summarize(start, end domain.GeoPoint, zoom ZoomTable) domain.RouteSummary {
	distance := DistanceKm(start, end)
	return domain.RouteSummary{
		DistanceKm: distance,
		ZoomLevel:  zoom.Classify(distance),
		Midpoint:   Midpoint(start, end),
	}
}
