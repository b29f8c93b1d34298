package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/usecases"
)

// errInvalidRoute is the application error type for pairs that can never be planned.
const errInvalidRoute = "InvalidRoute"

// WarmActivities renders route maps into the shared cache.
type WarmActivities struct {
	Flights *usecases.FlightService
	Maps    *usecases.MapService
}

// WarmMap renders one pair so the next request for it is a cache hit.
func (a *WarmActivities) WarmMap(ctx context.Context, pair RoutePair, points int, includeWind bool) (WarmResult, error) {
	logger := activity.GetLogger(ctx)

	summary, err := a.Flights.Summary(pair.Start, pair.End)
	if err != nil {
		return WarmResult{}, activityError("summarize", pair, err)
	}

	page, err := a.Maps.RenderMap(ctx, usecases.PlanRequest{
		Start:       pair.Start,
		End:         pair.End,
		Points:      points,
		IncludeWind: includeWind,
	})
	if err != nil {
		return WarmResult{}, activityError("render", pair, err)
	}

	logger.Info("map warmed", "pair", pair.Name, "distanceKm", summary.DistanceKm, "bytes", len(page))
	return WarmResult{
		Name:       pair.Name,
		DistanceKm: summary.DistanceKm,
		ZoomLevel:  summary.ZoomLevel,
		PageBytes:  len(page),
	}, nil
}

// WarmPlan caches the flight plan of one pair, which the JSON and GeoJSON
// endpoints share. It returns the number of wind samples on the plan.
func (a *WarmActivities) WarmPlan(ctx context.Context, pair RoutePair, points int, includeWind bool) (int, error) {
	plan, err := a.Flights.Plan(ctx, usecases.PlanRequest{
		Start:       pair.Start,
		End:         pair.End,
		Points:      points,
		IncludeWind: includeWind,
	})
	if err != nil {
		return 0, activityError("plan", pair, err)
	}
	return len(plan.WindSamples), nil
}

// activityError marks route engine rejections as non-retryable.
func activityError(op string, pair RoutePair, err error) error {
	msg := fmt.Sprintf("%s %s: %v", op, pair.Name, err)
	if errors.Is(err, domain.ErrInvalidCoordinate) ||
		errors.Is(err, domain.ErrAmbiguousGeodesic) ||
		errors.Is(err, domain.ErrInvalidSampleCount) {
		return temporal.NewNonRetryableApplicationError(msg, errInvalidRoute, err)
	}
	return fmt.Errorf("%s %s: %w", op, pair.Name, err)
}
