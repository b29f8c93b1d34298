package telemetry

// Span and attribute names shared by the instrumented layers.
const (
	TracerName = "github.com/samirrijal/flightpath"

	SpanPlanFlight = "flight.plan"
	SpanRenderMap  = "map.render"
	SpanWindLookup = "weather.corridor_lookup"

	AttrDistanceKm = "flight.distance_km"
	AttrZoomLevel  = "flight.zoom_level"
	AttrPoints     = "flight.points"
	AttrWindCount  = "weather.samples"
	AttrCacheHit   = "cache.hit"
)
