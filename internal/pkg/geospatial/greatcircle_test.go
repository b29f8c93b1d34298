package geospatial

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	losAngeles   = domain.GeoPoint{Lat: 34.0522, Lon: -118.2437}
	telAviv      = domain.GeoPoint{Lat: 32.0853, Lon: 34.7818}
	sanFrancisco = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	tokyo        = domain.GeoPoint{Lat: 35.6762, Lon: 139.6503}
	london       = domain.GeoPoint{Lat: 51.5074, Lon: -0.1278}
	newYork      = domain.GeoPoint{Lat: 40.7128, Lon: -74.0060}
)

func TestInterpolate_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		start, end domain.GeoPoint
		n          int
	}{
		{"LA to Tel Aviv", losAngeles, telAviv, 100},
		{"Tokyo to San Francisco", tokyo, sanFrancisco, 50},
		{"New York to London", newYork, london, 2},
		{"equator hop", domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 1}, 10},
		{"north pole to equator", domain.GeoPoint{Lat: 90, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 45}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := Interpolate(tt.start, tt.end, tt.n)
			require.NoError(t, err)
			require.Len(t, route, tt.n)

			assert.InDelta(t, tt.start.Lat, route.First().Lat, 1e-6)
			assert.InDelta(t, tt.start.Lon, route.First().Lon, 1e-6)
			assert.InDelta(t, tt.end.Lat, route.Last().Lat, 1e-6)
			assert.InDelta(t, tt.end.Lon, route.Last().Lon, 1e-6)
		})
	}
}

func TestInterpolate_SamePoint(t *testing.T) {
	route, err := Interpolate(london, london, 7)
	require.NoError(t, err)
	require.Len(t, route, 7)
	for _, p := range route {
		assert.Equal(t, london, p)
	}
}

func TestInterpolate_Symmetric(t *testing.T) {
	forward, err := Interpolate(losAngeles, telAviv, 100)
	require.NoError(t, err)
	backward, err := Interpolate(telAviv, losAngeles, 100)
	require.NoError(t, err)

	reversed := backward.Reversed()
	for i := range forward {
		assert.InDelta(t, forward[i].Lat, reversed[i].Lat, 1e-9, "lat at %d", i)
		assert.InDelta(t, forward[i].Lon, reversed[i].Lon, 1e-9, "lon at %d", i)
	}
}

func TestInterpolate_EvenSpacingAndProgress(t *testing.T) {
	route, err := Interpolate(newYork, london, 25)
	require.NoError(t, err)

	total := DistanceKm(newYork, london)
	step := total / 24

	prevFromStart := 0.0
	for i := 1; i < len(route); i++ {
		assert.InDelta(t, step, DistanceKm(route[i-1], route[i]), 1e-3, "segment %d", i)

		fromStart := DistanceKm(newYork, route[i])
		assert.Greater(t, fromStart, prevFromStart, "point %d backtracks", i)
		prevFromStart = fromStart

		// every point lies on the arc: no detour through it
		assert.InDelta(t, total, fromStart+DistanceKm(route[i], london), 1e-3)
	}
}

func TestInterpolate_LosAngelesTelAvivCrossesArctic(t *testing.T) {
	route, err := Interpolate(losAngeles, telAviv, 100)
	require.NoError(t, err)

	maxLat := -90.0
	for _, p := range route {
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
	}
	assert.InDelta(t, 70.29, maxLat, 0.05)
	assert.InDelta(t, 70.2366, route[50].Lat, 1e-3)
	assert.InDelta(t, -37.4344, route[50].Lon, 1e-3)
}

func TestInterpolate_AntimeridianCrossing(t *testing.T) {
	route, err := Interpolate(tokyo, sanFrancisco, 5)
	require.NoError(t, err)

	assert.InDelta(t, 161.0543, route[1].Lon, 1e-3)
	assert.InDelta(t, -172.2841, route[2].Lon, 1e-3)
	assert.InDelta(t, 48.6498, route[2].Lat, 1e-3)
}

func TestInterpolate_Antipodal(t *testing.T) {
	tests := []struct {
		name       string
		start, end domain.GeoPoint
	}{
		{"equator", domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 180}},
		{"equator negative", domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: -180}},
		{"poles", domain.GeoPoint{Lat: 90, Lon: 0}, domain.GeoPoint{Lat: -90, Lon: 0}},
		{"rounding near minus one", domain.GeoPoint{Lat: 10, Lon: 20}, domain.GeoPoint{Lat: -10, Lon: -160}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := Interpolate(tt.start, tt.end, 100)
			require.Error(t, err)
			assert.Nil(t, route)
			assert.True(t, errors.Is(err, domain.ErrAmbiguousGeodesic))

			var ambiguous *domain.AmbiguousGeodesicError
			require.ErrorAs(t, err, &ambiguous)
			assert.Equal(t, tt.start, ambiguous.Start)
			assert.Equal(t, tt.end, ambiguous.End)
		})
	}
}

func TestInterpolate_InvalidCount(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := Interpolate(losAngeles, telAviv, n)
		assert.ErrorIs(t, err, domain.ErrInvalidSampleCount, "n=%d", n)
	}
}

func TestInterpolate_NoNaN(t *testing.T) {
	// nearly antipodal but outside the tolerance
	route, err := Interpolate(domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0.5, Lon: 179}, 50)
	require.NoError(t, err)
	for i, p := range route {
		assert.False(t, math.IsNaN(p.Lat) || math.IsNaN(p.Lon), "NaN at %d", i)
	}
}
