package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("flightpath-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "flightpath-test" {
		t.Errorf("expected service name flightpath-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.Geodesy.DefaultPoints != 100 {
		t.Errorf("expected 100 default points, got %d", cfg.Geodesy.DefaultPoints)
	}
	if cfg.Geodesy.MarkerDivisor != 8 {
		t.Errorf("expected marker divisor 8, got %d", cfg.Geodesy.MarkerDivisor)
	}
	if cfg.WindFeed.PollInterval != 10*time.Minute {
		t.Errorf("expected 10m poll interval, got %s", cfg.WindFeed.PollInterval)
	}
	if cfg.Temporal.WarmInterval != 30*time.Minute {
		t.Errorf("expected 30m warm interval, got %s", cfg.Temporal.WarmInterval)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected 10 max conns, got %d", cfg.Database.MaxConns)
	}
	if len(cfg.Temporal.WarmPairs) != 3 {
		t.Errorf("expected 3 warm pairs, got %d", len(cfg.Temporal.WarmPairs))
	}

	zoom := cfg.Geodesy.ZoomTable()
	cases := map[float64]int{499.9: 10, 500: 8, 1999.9: 7, 2000: 5, 4999.9: 5, 5000: 3}
	for km, want := range cases {
		if got := zoom.Classify(km); got != want {
			t.Errorf("zoom(%.1f) = %d, want %d", km, got, want)
		}
	}

	start := cfg.Map.DefaultStart()
	if start.Lat != 37.7749 || start.Lon != -122.4194 {
		t.Errorf("unexpected default start %+v", start)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FLIGHTPATH_GEODESY_DEFAULT_POINTS", "250")
	t.Setenv("FLIGHTPATH_SERVER_PORT", "9090")

	cfg, err := Load("flightpath-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geodesy.DefaultPoints != 250 {
		t.Errorf("expected 250 default points, got %d", cfg.Geodesy.DefaultPoints)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("FLIGHTPATH_GEODESY_MARKER_DIVISOR", "0")

	_, err := Load("flightpath-test")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "geodesy.marker_divisor") {
		t.Errorf("expected marker_divisor in error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Geodesy:  GeodesyConfig{DefaultPoints: 1, MaxPoints: 1, MarkerDivisor: 8, WindSegmentPoints: 10},
		Map:      MapConfig{DefaultStartLat: 95, TileURL: "x", RouteOpacity: 0.5},
		WindFeed: WindFeedConfig{Stations: []Station{
			{ID: "kef airport", Lat: 63.98, Lon: -22.6},
		}},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"server.port", "database.host", "nats.url", "valkey.addr", "geodesy.default_points", "map.default_start", "windfeed.stations[0].id"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
