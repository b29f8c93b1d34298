package mapview

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// GeoJSON encodes the plan as a FeatureCollection: the route, the two
// endpoints with their marker bearings, and any wind samples.
func (r *Renderer) GeoJSON(plan *domain.FlightPlan) ([]byte, error) {
	fc := FeatureCollection(plan)
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	return data, nil
}

// FeatureCollection builds the GeoJSON representation of a plan. A route
// crossing the antimeridian becomes a MultiLineString cut at +/-180.
func FeatureCollection(plan *domain.FlightPlan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	parts := SplitAtAntimeridian(plan.Path)
	var geom orb.Geometry
	if len(parts) == 1 {
		geom = parts[0]
	} else {
		geom = orb.MultiLineString(parts)
	}
	route := geojson.NewFeature(geom)
	route.Properties["kind"] = "route"
	route.Properties["distance_km"] = plan.Summary.DistanceKm
	route.Properties["zoom_level"] = plan.Summary.ZoomLevel
	route.Properties["points"] = len(plan.Path)
	fc.Append(route)

	departure := geojson.NewFeature(toPoint(plan.Start))
	departure.Properties["kind"] = "departure"
	departure.Properties["bearing"] = int(plan.DepartureBearing)
	departure.Properties["bucket"] = plan.DepartureBearing.Bucket()
	fc.Append(departure)

	arrival := geojson.NewFeature(toPoint(plan.End))
	arrival.Properties["kind"] = "arrival"
	arrival.Properties["bearing"] = int(plan.ArrivalBearing)
	arrival.Properties["bucket"] = plan.ArrivalBearing.Bucket()
	fc.Append(arrival)

	for _, s := range plan.WindSamples {
		f := geojson.NewFeature(toPoint(s.Coord))
		f.Properties["kind"] = "wind"
		f.Properties["station"] = s.Station
		f.Properties["wind_direction"] = s.WindDirection
		f.Properties["wind_speed"] = s.WindSpeed
		f.Properties["observed_at"] = s.ObservedAt
		fc.Append(f)
	}

	if len(plan.Path) > 0 {
		fc.BBox = geojson.NewBBox(geom.Bound())
	}
	return fc
}

// SplitAtAntimeridian cuts a route into line strings wherever consecutive
// points are more than 180 degrees of longitude apart. The crossing latitude
// is interpolated linearly in unwrapped longitude.
func SplitAtAntimeridian(route domain.Route) []orb.LineString {
	if len(route) == 0 {
		return []orb.LineString{{}}
	}

	var parts []orb.LineString
	current := orb.LineString{toPoint(route[0])}
	for i := 1; i < len(route); i++ {
		prev, next := route[i-1], route[i]
		delta := next.Lon - prev.Lon
		if math.Abs(delta) <= 180 {
			current = append(current, toPoint(next))
			continue
		}

		edge := 180.0
		if delta > 0 {
			// heading west across -180
			edge = -180
		}
		unwrappedNext := next.Lon - math.Copysign(360, delta)
		t := (edge - prev.Lon) / (unwrappedNext - prev.Lon)
		lat := prev.Lat + t*(next.Lat-prev.Lat)

		current = append(current, orb.Point{edge, lat})
		parts = append(parts, current)
		current = orb.LineString{{-edge, lat}, toPoint(next)}
	}
	return append(parts, current)
}

func toPoint(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
