package usecases_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock WeatherSampleRepository ---

type mockWeatherRepo struct {
	upsertBatchFn func(ctx context.Context, samples []domain.WeatherSample) error
	inBoundsFn    func(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.WeatherSample, error)
	listFn        func(ctx context.Context, bounds *domain.Bounds, offset, limit int) ([]domain.WeatherSample, int, error)
}

func (m *mockWeatherRepo) UpsertBatch(ctx context.Context, samples []domain.WeatherSample) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, samples)
	}
	return nil
}

func (m *mockWeatherRepo) InBounds(ctx context.Context, bounds domain.Bounds, limit int) ([]domain.WeatherSample, error) {
	if m.inBoundsFn != nil {
		return m.inBoundsFn(ctx, bounds, limit)
	}
	return nil, nil
}

func (m *mockWeatherRepo) List(ctx context.Context, bounds *domain.Bounds, offset, limit int) ([]domain.WeatherSample, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, bounds, offset, limit)
	}
	return nil, 0, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu      sync.Mutex
	plans   []*domain.FlightPlan
	samples []*domain.WeatherSample
	err     error
}

func (m *mockPublisher) PublishFlightPlan(ctx context.Context, plan *domain.FlightPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, plan)
	return m.err
}

func (m *mockPublisher) PublishWeatherSample(ctx context.Context, sample *domain.WeatherSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return m.err }

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// --- Mock MapRenderer ---

type mockRenderer struct {
	renderFn func(plan *domain.FlightPlan) ([]byte, error)
	calls    int
}

func (m *mockRenderer) Render(plan *domain.FlightPlan) ([]byte, error) {
	m.calls++
	if m.renderFn != nil {
		return m.renderFn(plan)
	}
	return []byte("<html></html>"), nil
}

func (m *mockRenderer) GeoJSON(plan *domain.FlightPlan) ([]byte, error) {
	return []byte(`{"type":"FeatureCollection","features":[]}`), nil
}
