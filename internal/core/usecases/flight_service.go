package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/ports"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
	"github.com/samirrijal/flightpath/internal/pkg/logging"
	"github.com/samirrijal/flightpath/internal/pkg/metrics"
	"github.com/samirrijal/flightpath/internal/pkg/telemetry"
)

// PlanOptions are the engine tables the planner runs with.
type PlanOptions struct {
	DefaultPoints     int
	MaxPoints         int
	MarkerDivisor     int
	WindSegmentPoints int
	CorridorPadDeg    float64
	MaxWindSamples    int
	Zoom              geospatial.ZoomTable
	CacheTTL          int
}

// DefaultPlanOptions mirrors the configuration defaults.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		DefaultPoints:     100,
		MaxPoints:         1000,
		MarkerDivisor:     8,
		WindSegmentPoints: 10,
		CorridorPadDeg:    1.0,
		MaxWindSamples:    50,
		Zoom:              geospatial.DefaultZoomTable(),
		CacheTTL:          600,
	}
}

// PlanRequest describes one flight. Points of zero selects the default count.
type PlanRequest struct {
	Start       domain.GeoPoint `json:"start"`
	End         domain.GeoPoint `json:"end"`
	Points      int             `json:"points,omitempty"`
	IncludeWind bool            `json:"include_wind,omitempty"`
}

// FlightService computes flight plans from the route engine.
type FlightService struct {
	weather   ports.WeatherSampleRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
	opts      PlanOptions
	now       func() time.Time
}

// NewFlightService creates a new FlightService. weather, publisher and cache
// may be nil.
func NewFlightService(
	weather ports.WeatherSampleRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
	opts PlanOptions,
) *FlightService {
	return &FlightService{
		weather:   weather,
		publisher: publisher,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

// Options returns the engine tables in use.
func (s *FlightService) Options() PlanOptions {
	return s.opts
}

// Summary returns distance, zoom and midpoint without interpolating a path.
func (s *FlightService) Summary(start, end domain.GeoPoint) (domain.RouteSummary, error) {
	if err := validateEndpoints(start, end); err != nil {
		return domain.RouteSummary{}, err
	}
	return geospatial.Summarize(start, end, s.opts.Zoom), nil
}

// Plan computes the full flight plan: summary, path, bearings, marker path
// and, when requested, the wind overlay along the route corridor.
func (s *FlightService) Plan(ctx context.Context, req PlanRequest) (*domain.FlightPlan, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanPlanFlight)
	defer span.End()

	started := time.Now()
	plan, cached, err := s.plan(ctx, req)
	if err != nil {
		metrics.ObservePlan(planOutcome(err), 0, 0, time.Since(started))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64(telemetry.AttrDistanceKm, plan.Summary.DistanceKm),
		attribute.Int(telemetry.AttrZoomLevel, plan.Summary.ZoomLevel),
		attribute.Int(telemetry.AttrPoints, len(plan.Path)),
		attribute.Int(telemetry.AttrWindCount, len(plan.WindSamples)),
		attribute.Bool(telemetry.AttrCacheHit, cached),
	)
	if !cached {
		metrics.ObservePlan("ok", plan.Summary.DistanceKm, plan.Summary.ZoomLevel, time.Since(started))
	}
	return plan, nil
}

func (s *FlightService) plan(ctx context.Context, req PlanRequest) (*domain.FlightPlan, bool, error) {
	if err := validateEndpoints(req.Start, req.End); err != nil {
		return nil, false, err
	}
	points, err := s.resolvePoints(req.Points)
	if err != nil {
		return nil, false, err
	}

	cacheKey := s.planCacheKey(ctx, req, points)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var plan domain.FlightPlan
			if err := json.Unmarshal(data, &plan); err == nil {
				metrics.CacheHits.WithLabelValues("flight_plan").Inc()
				return &plan, true, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("flight_plan").Inc()
	}

	path, err := geospatial.Interpolate(req.Start, req.End, points)
	if err != nil {
		return nil, false, err
	}
	markerPath, err := geospatial.TruncateForMarker(path, s.opts.MarkerDivisor)
	if err != nil {
		return nil, false, err
	}

	plan := &domain.FlightPlan{
		Start:            req.Start,
		End:              req.End,
		Summary:          geospatial.Summarize(req.Start, req.End, s.opts.Zoom),
		Path:             path,
		MarkerPath:       markerPath,
		DepartureBearing: geospatial.ClassifyBearing(req.Start, req.End, false),
		ArrivalBearing:   geospatial.ClassifyBearing(req.End, req.Start, true),
		ComputedAt:       s.now().UTC(),
	}

	if req.IncludeWind && s.weather != nil {
		if err := s.attachWind(ctx, plan); err != nil {
			// The route is still valid without its overlay.
			logging.FromContext(ctx).Warn("wind overlay unavailable", "error", err)
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(plan); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishFlightPlan(ctx, plan); err != nil {
			logging.FromContext(ctx).Warn("publish flight plan failed", "error", err)
		}
	}

	return plan, false, nil
}

// attachWind loads the samples inside the padded route box, orders them by
// progress along the route and joins successive samples with short arcs.
func (s *FlightService) attachWind(ctx context.Context, plan *domain.FlightPlan) error {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanWindLookup)
	defer span.End()

	bounds := geospatial.BoundsOf(plan.Path, s.opts.CorridorPadDeg)
	samples, err := s.weather.InBounds(ctx, bounds, s.opts.MaxWindSamples)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("wind samples in corridor: %w", err)
	}
	span.SetAttributes(attribute.Int(telemetry.AttrWindCount, len(samples)))

	samples = geospatial.OrderAlongRoute(plan.Path, samples)
	plan.WindSamples = samples

	for i := 1; i < len(samples); i++ {
		segment, err := geospatial.SegmentBetweenWeatherSamples(samples[i-1], samples[i], s.opts.WindSegmentPoints)
		if err != nil {
			// Two antipodal stations cannot be joined; skip the pair.
			continue
		}
		plan.WindSegments = append(plan.WindSegments, domain.WindSegment{
			From: samples[i-1],
			To:   samples[i],
			Path: segment,
		})
	}
	return nil
}

func (s *FlightService) resolvePoints(points int) (int, error) {
	if points == 0 {
		return s.opts.DefaultPoints, nil
	}
	if points < 2 || (s.opts.MaxPoints > 0 && points > s.opts.MaxPoints) {
		return 0, fmt.Errorf("%w: points must be between 2 and %d, got %d",
			domain.ErrInvalidSampleCount, s.opts.MaxPoints, points)
	}
	return points, nil
}

func (s *FlightService) planCacheKey(ctx context.Context, req PlanRequest, points int) string {
	key := fmt.Sprintf("flight:plan:%.6f:%.6f:%.6f:%.6f:%d",
		req.Start.Lat, req.Start.Lon, req.End.Lat, req.End.Lon, points)
	if req.IncludeWind {
		key += fmt.Sprintf(":wind:%d", weatherGeneration(ctx, s.cache))
	}
	return key
}

func validateEndpoints(start, end domain.GeoPoint) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	return nil
}

func planOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, domain.ErrInvalidSampleCount):
		return "invalid"
	case errors.Is(err, domain.ErrAmbiguousGeodesic):
		return "ambiguous"
	default:
		return "error"
	}
}
