package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/ports"
	"github.com/samirrijal/flightpath/internal/pkg/logging"
	"github.com/samirrijal/flightpath/internal/pkg/metrics"
)

// weatherGenerationKey is bumped whenever new wind samples arrive, so cached
// plans and maps with a wind overlay are never served stale.
const weatherGenerationKey = "weather:generation"

// WeatherService stores and serves wind observations.
type WeatherService struct {
	samples   ports.WeatherSampleRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
}

// NewWeatherService creates a new WeatherService. publisher and cache may be nil.
func NewWeatherService(
	samples ports.WeatherSampleRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
) *WeatherService {
	return &WeatherService{samples: samples, publisher: publisher, cache: cache}
}

// Ingest validates and stores a batch of samples, then announces each of them.
func (s *WeatherService) Ingest(ctx context.Context, source string, samples []domain.WeatherSample) error {
	if len(samples) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range samples {
		if samples[i].Station == "" {
			return fmt.Errorf("%w: sample %d: station is required", domain.ErrInvalidWeatherSample, i)
		}
		if !domain.ValidStationID(samples[i].Station) {
			return fmt.Errorf("%w: sample %d: station %q must be up to 64 letters, digits, '.', '_', ':' or '-'",
				domain.ErrInvalidWeatherSample, i, samples[i].Station)
		}
		if err := samples[i].Coord.Validate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if samples[i].WindDirection < 0 || samples[i].WindDirection >= 360 {
			return fmt.Errorf("%w: sample %d: wind direction must be in [0, 360), got %v",
				domain.ErrInvalidWeatherSample, i, samples[i].WindDirection)
		}
		if samples[i].WindSpeed < 0 {
			return fmt.Errorf("%w: sample %d: wind speed must not be negative", domain.ErrInvalidWeatherSample, i)
		}
		if samples[i].ObservedAt.IsZero() {
			samples[i].ObservedAt = now
		}
	}

	if err := s.samples.UpsertBatch(ctx, samples); err != nil {
		return fmt.Errorf("store wind samples: %w", err)
	}
	metrics.WindSamplesIngested.WithLabelValues(source).Add(float64(len(samples)))

	if s.publisher != nil {
		for i := range samples {
			if err := s.publisher.PublishWeatherSample(ctx, &samples[i]); err != nil {
				logging.FromContext(ctx).Warn("publish wind sample failed",
					"station", samples[i].Station, "error", err)
			}
		}
	}

	s.BumpGeneration(ctx)
	return nil
}

// List returns a page of samples and the total count.
func (s *WeatherService) List(ctx context.Context, bounds *domain.Bounds, offset, limit int) ([]domain.WeatherSample, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.samples.List(ctx, bounds, offset, limit)
}

// InBounds returns the latest sample per station inside the box.
func (s *WeatherService) InBounds(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.WeatherSample, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.samples.InBounds(ctx, bounds, limit)
}

// OnSample is the broker callback for samples stored by another process.
func (s *WeatherService) OnSample(ctx context.Context, sample *domain.WeatherSample) error {
	logging.FromContext(ctx).Debug("wind sample received", "station", sample.Station)
	s.BumpGeneration(ctx)
	return nil
}

// BumpGeneration invalidates every cached wind overlay.
func (s *WeatherService) BumpGeneration(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, weatherGenerationKey); err != nil {
		logging.FromContext(ctx).Warn("bump weather generation failed", "error", err)
	}
}

func weatherGeneration(ctx context.Context, cache ports.CacheService) int64 {
	if cache == nil {
		return 0
	}
	data, err := cache.Get(ctx, weatherGenerationKey)
	if err != nil {
		return 0
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return gen
}
