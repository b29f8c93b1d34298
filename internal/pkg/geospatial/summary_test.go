package geospatial

import (
	"testing"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarize_LosAngelesTelAviv(t *testing.T) {
	s := Summarize(losAngeles, telAviv, DefaultZoomTable())

	// spherical distance; an ellipsoidal model gives ~12180 km
	assert.InDelta(t, 12138, s.DistanceKm, 5)
	assert.Equal(t, 3, s.ZoomLevel)
	assert.InDelta(t, 33.07, s.Midpoint.Lat, 0.01)
	assert.InDelta(t, -41.73, s.Midpoint.Lon, 0.01)
}

func TestSummarize_Symmetric(t *testing.T) {
	a := Summarize(newYork, london, DefaultZoomTable())
	b := Summarize(london, newYork, DefaultZoomTable())
	assert.InDelta(t, a.DistanceKm, b.DistanceKm, 1e-9)
	assert.InDelta(t, 5570.2, a.DistanceKm, 1)
	assert.Equal(t, 3, a.ZoomLevel)
}

func TestSummarize_SamePointIsZero(t *testing.T) {
	s := Summarize(london, london, DefaultZoomTable())
	assert.Equal(t, 0.0, s.DistanceKm)
	assert.Equal(t, 10, s.ZoomLevel)
	assert.Equal(t, london, s.Midpoint)
}

func TestDistanceKm_MatchesCentralAngle(t *testing.T) {
	pairs := [][2]domain.GeoPoint{
		{losAngeles, telAviv},
		{tokyo, sanFrancisco},
		{newYork, london},
	}
	for _, p := range pairs {
		assert.InDelta(t, CentralAngle(p[0], p[1])*EarthRadiusKm, DistanceKm(p[0], p[1]), 1e-6)
	}
}

func TestZoomTable_Boundaries(t *testing.T) {
	table := DefaultZoomTable()
	tests := []struct {
		distance float64
		zoom     int
	}{
		{0, 10},
		{499.9, 10},
		{500.0, 8},
		{999.9, 8},
		{1000.0, 7},
		{1999.9, 7},
		{2000.0, 5},
		{4999.9, 5},
		{5000.0, 3},
		{20000, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.zoom, table.Classify(tt.distance), "distance %.1f", tt.distance)
	}
}

func TestNewZoomTable_SortsLevels(t *testing.T) {
	table := NewZoomTable([]ZoomLevel{
		{MaxKm: 3000, Zoom: 4},
		{MaxKm: 100, Zoom: 12},
	}, 2)

	assert.Equal(t, 12, table.Classify(50))
	assert.Equal(t, 4, table.Classify(150))
	assert.Equal(t, 2, table.Classify(3000))
}

func TestMidpoint_IsArithmeticMean(t *testing.T) {
	m := Midpoint(domain.GeoPoint{Lat: 10, Lon: -20}, domain.GeoPoint{Lat: 30, Lon: 40})
	assert.Equal(t, domain.GeoPoint{Lat: 20, Lon: 10}, m)
}
