package ports

import (
	"context"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// WeatherSampleRepository persists wind observations produced by the wind feed.
type WeatherSampleRepository interface {
	UpsertBatch(ctx context.Context, samples []domain.WeatherSample) error
	// InBounds returns the latest sample per station inside the box, at most limit of them.
	InBounds(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.WeatherSample, error)
	// List returns a page of samples, optionally filtered by bounds, and the total count.
	List(ctx context.Context, bounds *domain.Bounds, offset, limit int) ([]domain.WeatherSample, int, error)
}
