package usecases

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/flightpath/internal/core/ports"
	"github.com/samirrijal/flightpath/internal/pkg/metrics"
	"github.com/samirrijal/flightpath/internal/pkg/telemetry"
)

// MapService renders flight plans into map pages and GeoJSON.
type MapService struct {
	flights  *FlightService
	renderer ports.MapRenderer
	cache    ports.CacheService
	ttl      int
}

// NewMapService creates a new MapService. cache may be nil.
func NewMapService(flights *FlightService, renderer ports.MapRenderer, cache ports.CacheService, ttlSeconds int) *MapService {
	return &MapService{flights: flights, renderer: renderer, cache: cache, ttl: ttlSeconds}
}

// RenderMap returns the HTML page for a flight, served from cache when the
// same flight was drawn since the last wind update.
func (s *MapService) RenderMap(ctx context.Context, req PlanRequest) ([]byte, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanRenderMap)
	defer span.End()

	if err := validateEndpoints(req.Start, req.End); err != nil {
		return nil, err
	}
	points, err := s.flights.resolvePoints(req.Points)
	if err != nil {
		return nil, err
	}
	cacheKey := "map:html:" + s.flights.planCacheKey(ctx, req, points)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("map_html").Inc()
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("map_html").Inc()
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	plan, err := s.flights.Plan(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	page, err := s.renderer.Render(plan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("render map: %w", err)
	}
	metrics.MapRenders.Inc()

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, page, s.ttl)
	}
	return page, nil
}

// RouteGeoJSON returns the flight as a GeoJSON FeatureCollection.
func (s *MapService) RouteGeoJSON(ctx context.Context, req PlanRequest) ([]byte, error) {
	plan, err := s.flights.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.GeoJSON(plan)
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}
