package geospatial

import (
	"fmt"
	"testing"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyBearing(t *testing.T) {
	origin := domain.GeoPoint{Lat: 0, Lon: 0}
	tests := []struct {
		relative domain.GeoPoint
		expected domain.Bearing
		flipped  domain.Bearing
	}{
		{domain.GeoPoint{Lat: 1, Lon: 1}, 45, 225},
		{domain.GeoPoint{Lat: 1, Lon: -1}, 315, 135},
		{domain.GeoPoint{Lat: -1, Lon: 1}, 135, 315},
		{domain.GeoPoint{Lat: -1, Lon: -1}, 225, 45},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.relative), func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyBearing(origin, tt.relative, false))
			assert.Equal(t, tt.flipped, ClassifyBearing(origin, tt.relative, true))
		})
	}
}

func TestClassifyBearing_ZeroDeltas(t *testing.T) {
	p := domain.GeoPoint{Lat: 12.5, Lon: -8}

	assert.Equal(t, domain.BearingSE, ClassifyBearing(p, p, false))
	assert.Equal(t, domain.BearingNW, ClassifyBearing(p, p, true))

	// due north: not west
	assert.Equal(t, domain.BearingNE, ClassifyBearing(p, domain.GeoPoint{Lat: 13, Lon: -8}, false))
	// due west: not north
	assert.Equal(t, domain.BearingSW, ClassifyBearing(p, domain.GeoPoint{Lat: 12.5, Lon: -9}, false))
	// due east
	assert.Equal(t, domain.BearingSE, ClassifyBearing(p, domain.GeoPoint{Lat: 12.5, Lon: -7}, false))
}

func TestClassifyBearing_Endpoints(t *testing.T) {
	assert.Equal(t, domain.BearingSE, ClassifyBearing(losAngeles, telAviv, false))
	assert.Equal(t, domain.BearingSE, ClassifyBearing(telAviv, losAngeles, true))
}

func TestBearing_Bucket(t *testing.T) {
	assert.Equal(t, "NE", domain.BearingNE.Bucket())
	assert.Equal(t, "SW", domain.BearingNE.Flip().Bucket())
	assert.Equal(t, "", domain.Bearing(90).Bucket())
}

func TestInitialBearing(t *testing.T) {
	tests := []struct {
		name     string
		from, to domain.GeoPoint
		expected float64
	}{
		{"north", domain.GeoPoint{Lat: 40, Lon: -122}, domain.GeoPoint{Lat: 41, Lon: -122}, 0},
		{"east", domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 1}, 90},
		{"south", domain.GeoPoint{Lat: 41, Lon: -122}, domain.GeoPoint{Lat: 40, Lon: -122}, 180},
		{"west", domain.GeoPoint{Lat: 0, Lon: 1}, domain.GeoPoint{Lat: 0, Lon: 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, InitialBearing(tt.from, tt.to), 0.5)
		})
	}
}
