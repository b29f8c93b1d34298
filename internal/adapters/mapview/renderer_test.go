package mapview

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
)

var (
	losAngeles    = domain.GeoPoint{Lat: 34.0522, Lon: -118.2437}
	telAviv       = domain.GeoPoint{Lat: 32.0853, Lon: 34.7818}
	tokyo         = domain.GeoPoint{Lat: 35.6762, Lon: 139.6503}
	sanFrancisco  = domain.GeoPoint{Lat: 37.7749, Lon: -122.4194}
	testRendering = Options{
		TileURL:      "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:  "OpenStreetMap contributors",
		RouteColor:   "red",
		RouteOpacity: 0.5,
	}
)

func buildPlan(t *testing.T, start, end domain.GeoPoint, n int) *domain.FlightPlan {
	t.Helper()
	path, err := geospatial.Interpolate(start, end, n)
	require.NoError(t, err)
	marker, err := geospatial.TruncateForMarker(path, 8)
	require.NoError(t, err)
	return &domain.FlightPlan{
		Start:            start,
		End:              end,
		Summary:          geospatial.Summarize(start, end, geospatial.DefaultZoomTable()),
		Path:             path,
		MarkerPath:       marker,
		DepartureBearing: geospatial.ClassifyBearing(start, end, false),
		ArrivalBearing:   geospatial.ClassifyBearing(end, start, true),
		ComputedAt:       time.Now().UTC(),
	}
}

func TestRender(t *testing.T) {
	r, err := New(testRendering)
	require.NoError(t, err)

	plan := buildPlan(t, losAngeles, telAviv, 100)
	plan.WindSamples = []domain.WeatherSample{
		{Station: "kef", Coord: domain.GeoPoint{Lat: 63.98, Lon: -22.6}, WindDirection: 250, WindSpeed: 40},
	}

	page, err := r.Render(plan)
	require.NoError(t, err)

	html := string(page)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Departure Airport")
	assert.Contains(t, html, "Arrival Airport")
	assert.Contains(t, html, "L.polyline(path")
	assert.Contains(t, html, "openstreetmap.org")
	assert.Contains(t, html, "fp-wind")
	assert.Contains(t, html, "setView([33.06874")
	assert.Equal(t, 1, strings.Count(html, `<div class="fp-wind"`))
}

func TestRender_EscapesWindTooltip(t *testing.T) {
	r, err := New(testRendering)
	require.NoError(t, err)

	plan := buildPlan(t, losAngeles, telAviv, 20)
	plan.WindSamples = []domain.WeatherSample{
		{Station: "<img src=x onerror=alert(1)>", Coord: domain.GeoPoint{Lat: 63.98, Lon: -22.6}, WindDirection: 10, WindSpeed: 5},
	}

	page, err := r.Render(plan)
	require.NoError(t, err)

	html := string(page)
	assert.NotContains(t, html, "<img src=x")
	assert.NotContains(t, html, `\u003cimg`, "a raw '<' would become markup inside the tooltip")
	assert.Contains(t, html, `\u0026lt;img src=x onerror`)
}

func TestRender_EmptyPlan(t *testing.T) {
	r, err := New(testRendering)
	require.NoError(t, err)

	_, err = r.Render(&domain.FlightPlan{})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, 60, r.opts.FrameMillis)
	assert.Equal(t, "✈", r.opts.PlaneGlyph)
}

func TestHeadings(t *testing.T) {
	plan := buildPlan(t, losAngeles, telAviv, 100)

	h := headings(plan.Path, len(plan.MarkerPath))
	require.Len(t, h, 88)
	assert.InDelta(t, geospatial.InitialBearing(plan.Path[0], plan.Path[1]), h[0], 1e-9)
	for _, v := range h {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 360.0)
	}

	// marker path as long as the path repeats the last heading
	short := domain.Route{losAngeles, telAviv}
	h = headings(short, 2)
	assert.Equal(t, h[0], h[1])
}

func TestShiftNear(t *testing.T) {
	route := domain.Route{{Lat: 10, Lon: -170}, {Lat: 11, Lon: -160}}

	shifted := shiftNear(route, 175)
	assert.InDelta(t, 190, shifted[0].Lon, 1e-9)
	assert.InDelta(t, 200, shifted[1].Lon, 1e-9)
	assert.InDelta(t, -170, route[0].Lon, 1e-9, "input must not be modified")

	same := shiftNear(route, -150)
	assert.Equal(t, route, same)
}

func TestGeoJSON(t *testing.T) {
	r, err := New(testRendering)
	require.NoError(t, err)

	plan := buildPlan(t, losAngeles, telAviv, 100)
	data, err := r.GeoJSON(plan)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok, "route should be a LineString, got %T", fc.Features[0].Geometry)
	assert.Len(t, line, 100)
	assert.Equal(t, orb.Point{losAngeles.Lon, losAngeles.Lat}, line[0])
	assert.Equal(t, "route", fc.Features[0].Properties["kind"])

	assert.Equal(t, "departure", fc.Features[1].Properties["kind"])
	assert.Equal(t, "SE", fc.Features[1].Properties["bucket"])
	assert.Equal(t, "arrival", fc.Features[2].Properties["kind"])
	assert.Equal(t, float64(135), fc.Features[2].Properties["bearing"])
	assert.NotNil(t, fc.BBox)
}

func TestGeoJSON_Antimeridian(t *testing.T) {
	plan := buildPlan(t, tokyo, sanFrancisco, 50)

	fc := FeatureCollection(plan)
	multi, ok := fc.Features[0].Geometry.(orb.MultiLineString)
	require.True(t, ok, "expected MultiLineString, got %T", fc.Features[0].Geometry)
	require.Len(t, multi, 2)

	west, east := multi[0], multi[1]
	assert.Equal(t, 180.0, west[len(west)-1][0])
	assert.Equal(t, -180.0, east[0][0])
	assert.Equal(t, west[len(west)-1][1], east[0][1])
	assert.Equal(t, len(plan.Path)+2, len(west)+len(east))
}

func TestSplitAtAntimeridian(t *testing.T) {
	parts := SplitAtAntimeridian(domain.Route{{Lat: 0, Lon: 179}, {Lat: 2, Lon: -179}})
	require.Len(t, parts, 2)
	assert.Equal(t, orb.Point{180, 1}, parts[0][1])
	assert.Equal(t, orb.Point{-180, 1}, parts[1][0])

	parts = SplitAtAntimeridian(domain.Route{{Lat: 0, Lon: -179}, {Lat: 2, Lon: 179}})
	require.Len(t, parts, 2)
	assert.Equal(t, orb.Point{-180, 1}, parts[0][1])
	assert.Equal(t, orb.Point{180, 1}, parts[1][0])

	parts = SplitAtAntimeridian(domain.Route{{Lat: 0, Lon: 10}, {Lat: 1, Lon: 20}})
	require.Len(t, parts, 1)
	assert.Len(t, parts[0], 2)

	for _, p := range parts[0] {
		assert.False(t, math.IsNaN(p[0]))
	}
}
