// Package app wires adapters and use cases from configuration. It is shared
// by every binary that serves or pre-renders flights.
package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/samirrijal/flightpath/internal/adapters/mapview"
	natsadapter "github.com/samirrijal/flightpath/internal/adapters/nats"
	"github.com/samirrijal/flightpath/internal/adapters/postgres"
	"github.com/samirrijal/flightpath/internal/adapters/valkey"
	"github.com/samirrijal/flightpath/internal/core/ports"
	"github.com/samirrijal/flightpath/internal/core/usecases"
	"github.com/samirrijal/flightpath/internal/pkg/config"
)

// Services is the wired application. DB, Cache and Publisher are nil when
// the backing service was unreachable at startup.
type Services struct {
	DB        *postgres.DB
	Cache     *valkey.Cache
	Publisher *natsadapter.Publisher

	Flights *usecases.FlightService
	Maps    *usecases.MapService
	// Weather is nil without a database.
	Weather *usecases.WeatherService
	// Generation keeps the wind generation stamp current; it works without a database.
	Generation *usecases.WeatherService

	closers []func()
}

// PlanOptions maps the geodesy and map sections onto the planner options.
func PlanOptions(cfg *config.Config) usecases.PlanOptions {
	g := cfg.Geodesy
	return usecases.PlanOptions{
		DefaultPoints:     g.DefaultPoints,
		MaxPoints:         g.MaxPoints,
		MarkerDivisor:     g.MarkerDivisor,
		WindSegmentPoints: g.WindSegmentPoints,
		CorridorPadDeg:    g.CorridorPadDeg,
		MaxWindSamples:    g.MaxWindSamples,
		Zoom:              g.ZoomTable(),
		CacheTTL:          cfg.Map.CacheTTL,
	}
}

// RendererOptions maps the map section onto the page renderer.
func RendererOptions(cfg *config.Config) mapview.Options {
	return mapview.Options{
		TileURL:      cfg.Map.TileURL,
		Attribution:  cfg.Map.Attribution,
		RouteColor:   cfg.Map.RouteColor,
		RouteOpacity: cfg.Map.RouteOpacity,
		PlaneGlyph:   cfg.Map.PlaneGlyph,
	}
}

// Build connects to Postgres, Valkey and NATS and wires the use cases. Only
// the renderer is required; every other dependency degrades to "off".
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{}

	renderer, err := mapview.New(RendererOptions(cfg))
	if err != nil {
		return nil, err
	}

	var (
		weatherRepo ports.WeatherSampleRepository
		cache       ports.CacheService
		publisher   ports.EventPublisher
	)

	if db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns); err != nil {
		slog.Warn("database unavailable, weather storage disabled", "error", err)
	} else {
		s.DB = db
		s.closers = append(s.closers, db.Close)
		weatherRepo = postgres.NewWeatherSampleRepo(db)
	}

	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		s.Cache = c
		s.closers = append(s.closers, c.Close)
		cache = c
	}

	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		s.Publisher = p
		s.closers = append(s.closers, p.Close)
		publisher = p
	}

	opts := PlanOptions(cfg)
	s.Flights = usecases.NewFlightService(weatherRepo, publisher, cache, opts)
	s.Maps = usecases.NewMapService(s.Flights, renderer, cache, cfg.Map.CacheTTL)
	s.Generation = usecases.NewWeatherService(weatherRepo, publisher, cache)
	if weatherRepo != nil {
		s.Weather = s.Generation
	}
	return s, nil
}

// Close releases connections in reverse order of opening.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// InstanceName identifies this process for durable consumers.
func InstanceName(service string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return service
	}
	return service + "-" + host
}
