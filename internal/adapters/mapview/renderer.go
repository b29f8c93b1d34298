package mapview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
)

//go:embed map.html.tmpl
var templateFS embed.FS

// Options controls the look of the rendered page.
type Options struct {
	TileURL      string
	Attribution  string
	RouteColor   string
	RouteOpacity float64
	PlaneGlyph   string
	FrameMillis  int
}

// Renderer implements ports.MapRenderer with a Leaflet page.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// New parses the embedded page template.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "map.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse map template: %w", err)
	}
	if opts.FrameMillis <= 0 {
		opts.FrameMillis = 60
	}
	if opts.PlaneGlyph == "" {
		opts.PlaneGlyph = "✈"
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

type latLng [2]float64

type windSegmentView struct {
	Path []latLng
}

type windSampleView struct {
	LatLng  latLng
	Angle   float64
	Tooltip string
}

type pageData struct {
	Title          string
	Center         latLng
	Zoom           int
	TileURL        string
	Attribution    string
	RouteColor     string
	RouteOpacity   float64
	PlaneGlyph     string
	FrameMillis    int
	Path           []latLng
	MarkerPath     []latLng
	Headings       []float64
	DepartureAngle int
	ArrivalAngle   int
	Wind           []windSegmentView
	Samples        []windSampleView
}

// Render draws the plan as a self-contained HTML page.
func (r *Renderer) Render(plan *domain.FlightPlan) ([]byte, error) {
	if len(plan.Path) == 0 {
		return nil, fmt.Errorf("render map: plan has no path")
	}

	path := geospatial.UnwrapLongitudes(plan.Path)
	first, last := path.First(), path.Last()
	center := latLng{geospatial.Avg(first.Lat, last.Lat), geospatial.Avg(first.Lon, last.Lon)}

	// The marker path is a prefix of the path, so it shares its unwrapped longitudes.
	markerLen := len(plan.MarkerPath)
	if markerLen > len(path) {
		markerLen = len(path)
	}

	data := pageData{
		Title: fmt.Sprintf("Flight (%.4f, %.4f) to (%.4f, %.4f), %.0f km",
			plan.Start.Lat, plan.Start.Lon, plan.End.Lat, plan.End.Lon, plan.Summary.DistanceKm),
		Center:         center,
		Zoom:           plan.Summary.ZoomLevel,
		TileURL:        r.opts.TileURL,
		Attribution:    r.opts.Attribution,
		RouteColor:     r.opts.RouteColor,
		RouteOpacity:   r.opts.RouteOpacity,
		PlaneGlyph:     template.HTMLEscapeString(r.opts.PlaneGlyph),
		FrameMillis:    r.opts.FrameMillis,
		Path:           toLatLngs(path),
		MarkerPath:     toLatLngs(path[:markerLen]),
		Headings:       headings(plan.Path, markerLen),
		DepartureAngle: int(plan.DepartureBearing),
		ArrivalAngle:   int(plan.ArrivalBearing),
	}

	for _, seg := range plan.WindSegments {
		unwrapped := shiftNear(geospatial.UnwrapLongitudes(seg.Path), center[1])
		data.Wind = append(data.Wind, windSegmentView{Path: toLatLngs(unwrapped)})
	}
	for _, s := range plan.WindSamples {
		p := shiftNear(domain.Route{s.Coord}, center[1])[0]
		data.Samples = append(data.Samples, windSampleView{
			LatLng: latLng{p.Lat, p.Lon},
			// Meteorological direction is where the wind comes from; the arrow shows where it goes.
			Angle:   math.Mod(s.WindDirection+180, 360),
			// Leaflet renders tooltip strings as HTML.
			Tooltip: template.HTMLEscapeString(
				fmt.Sprintf("%s: %.0f km/h from %.0f°", s.Station, s.WindSpeed, s.WindDirection)),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute map template: %w", err)
	}
	return buf.Bytes(), nil
}

// headings returns the forward azimuth at each of the first n route points.
func headings(route domain.Route, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case i+1 < len(route):
			out[i] = geospatial.InitialBearing(route[i], route[i+1])
		case i > 0:
			out[i] = out[i-1]
		}
	}
	return out
}

// shiftNear moves a route by a multiple of 360 degrees of longitude so that
// its first point is within 180 degrees of refLon.
func shiftNear(route domain.Route, refLon float64) domain.Route {
	if len(route) == 0 {
		return route
	}
	shift := 360 * math.Round((refLon-route[0].Lon)/360)
	if shift == 0 {
		return route
	}
	out := make(domain.Route, len(route))
	for i, p := range route {
		out[i] = domain.GeoPoint{Lat: p.Lat, Lon: p.Lon + shift}
	}
	return out
}

func toLatLngs(route domain.Route) []latLng {
	out := make([]latLng, len(route))
	for i, p := range route {
		out[i] = latLng{p.Lat, p.Lon}
	}
	return out
}
