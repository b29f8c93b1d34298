package ports

import (
	"context"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFlightPlan(ctx context.Context, plan *domain.FlightPlan) error
	PublishWeatherSample(ctx context.Context, sample *domain.WeatherSample) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeWeatherSamples(ctx context.Context, handler func(ctx context.Context, sample *domain.WeatherSample) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// MapRenderer draws computed flight plans.
type MapRenderer interface {
	// Render returns a self-contained HTML map page.
	Render(plan *domain.FlightPlan) ([]byte, error)
	// GeoJSON returns the plan as a FeatureCollection.
	GeoJSON(plan *domain.FlightPlan) ([]byte, error)
}
