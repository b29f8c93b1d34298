package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/flightpath/internal/adapters/openmeteo"
	"github.com/samirrijal/flightpath/internal/app"
	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/config"
	"github.com/samirrijal/flightpath/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("flightpath-windfeed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}
	defer svc.Close()
	if svc.Weather == nil {
		log.Fatalf("windfeed needs a database")
	}

	if len(cfg.WindFeed.Stations) == 0 {
		log.Fatalf("no stations configured (windfeed.stations)")
	}
	stations := make([]openmeteo.Station, 0, len(cfg.WindFeed.Stations))
	for _, s := range cfg.WindFeed.Stations {
		stations = append(stations, openmeteo.Station{ID: s.ID, Coord: domain.GeoPoint{Lat: s.Lat, Lon: s.Lon}})
	}

	p := &poller{
		source:      openmeteo.New(cfg.WindFeed.BaseURL, 15*time.Second),
		sink:        svc.Weather,
		stations:    stations,
		concurrency: 8,
	}

	slog.Info("wind feed started", "stations", len(stations), "interval", cfg.WindFeed.PollInterval)

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		slog.Info("shutting down wind feed", "signal", sig.String())
		cancel()
	}()

	p.run(ctx, cfg.WindFeed.PollInterval)
}
