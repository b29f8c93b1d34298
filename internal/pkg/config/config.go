package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Geodesy   GeodesyConfig   `mapstructure:"geodesy"`
	Map       MapConfig       `mapstructure:"map"`
	WindFeed  WindFeedConfig  `mapstructure:"windfeed"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort     string        `mapstructure:"host_port"`
	Namespace    string        `mapstructure:"namespace"`
	TaskQueue    string        `mapstructure:"task_queue"`
	WarmInterval time.Duration `mapstructure:"warm_interval"`
	WarmWind     bool          `mapstructure:"warm_wind"`
	WarmPairs    []CityPair    `mapstructure:"warm_pairs"`
}

// CityPair is a route pre-rendered by the cache warmer.
type CityPair struct {
	Name     string  `mapstructure:"name" json:"name"`
	StartLat float64 `mapstructure:"start_lat" json:"start_lat"`
	StartLon float64 `mapstructure:"start_lon" json:"start_lon"`
	EndLat   float64 `mapstructure:"end_lat" json:"end_lat"`
	EndLon   float64 `mapstructure:"end_lon" json:"end_lon"`
}

// GeodesyConfig holds the tunable tables of the route engine.
type GeodesyConfig struct {
	DefaultPoints     int                    `mapstructure:"default_points"`
	MaxPoints         int                    `mapstructure:"max_points"`
	MarkerDivisor     int                    `mapstructure:"marker_divisor"`
	WindSegmentPoints int                    `mapstructure:"wind_segment_points"`
	CorridorPadDeg    float64                `mapstructure:"corridor_pad_deg"`
	MaxWindSamples    int                    `mapstructure:"max_wind_samples"`
	ZoomLevels        []geospatial.ZoomLevel `mapstructure:"zoom_levels"`
	ZoomFallback      int                    `mapstructure:"zoom_fallback"`
}

// ZoomTable builds the sorted zoom step function.
func (g GeodesyConfig) ZoomTable() geospatial.ZoomTable {
	return geospatial.NewZoomTable(g.ZoomLevels, g.ZoomFallback)
}

type MapConfig struct {
	DefaultStartLat float64 `mapstructure:"default_start_lat"`
	DefaultStartLon float64 `mapstructure:"default_start_lon"`
	DefaultEndLat   float64 `mapstructure:"default_end_lat"`
	DefaultEndLon   float64 `mapstructure:"default_end_lon"`
	TileURL         string  `mapstructure:"tile_url"`
	Attribution     string  `mapstructure:"attribution"`
	RouteColor      string  `mapstructure:"route_color"`
	RouteOpacity    float64 `mapstructure:"route_opacity"`
	PlaneGlyph      string  `mapstructure:"plane_glyph"`
	CacheTTL        int     `mapstructure:"cache_ttl"`
}

// DefaultStart is the departure used when a request omits one.
func (m MapConfig) DefaultStart() domain.GeoPoint {
	return domain.GeoPoint{Lat: m.DefaultStartLat, Lon: m.DefaultStartLon}
}

// DefaultEnd is the arrival used when a request omits one.
func (m MapConfig) DefaultEnd() domain.GeoPoint {
	return domain.GeoPoint{Lat: m.DefaultEndLat, Lon: m.DefaultEndLon}
}

type WindFeedConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Stations     []Station     `mapstructure:"stations"`
}

// Station is a fixed point polled by the wind feed.
type Station struct {
	ID  string  `mapstructure:"id"`
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "flightpath")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "flightpath")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "map-warmup-queue")
	v.SetDefault("temporal.warm_interval", "30m")
	v.SetDefault("temporal.warm_wind", false)
	v.SetDefault("temporal.warm_pairs", []map[string]any{
		{"name": "sfo-tlv", "start_lat": 37.7749, "start_lon": -122.4194, "end_lat": 32.0853, "end_lon": 34.7818},
		{"name": "lax-tlv", "start_lat": 34.0522, "start_lon": -118.2437, "end_lat": 32.0853, "end_lon": 34.7818},
		{"name": "jfk-lhr", "start_lat": 40.7128, "start_lon": -74.0060, "end_lat": 51.5074, "end_lon": -0.1278},
	})

	defaults := geospatial.DefaultZoomTable()
	zoomLevels := make([]map[string]any, 0, len(defaults.Levels))
	for _, l := range defaults.Levels {
		zoomLevels = append(zoomLevels, map[string]any{"max_km": l.MaxKm, "zoom": l.Zoom})
	}
	v.SetDefault("geodesy.default_points", 100)
	v.SetDefault("geodesy.max_points", 1000)
	v.SetDefault("geodesy.marker_divisor", 8)
	v.SetDefault("geodesy.wind_segment_points", 10)
	v.SetDefault("geodesy.corridor_pad_deg", 1.0)
	v.SetDefault("geodesy.max_wind_samples", 50)
	v.SetDefault("geodesy.zoom_levels", zoomLevels)
	v.SetDefault("geodesy.zoom_fallback", defaults.Fallback)

	// San Francisco -> Tel Aviv
	v.SetDefault("map.default_start_lat", 37.7749)
	v.SetDefault("map.default_start_lon", -122.4194)
	v.SetDefault("map.default_end_lat", 32.0853)
	v.SetDefault("map.default_end_lon", 34.7818)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", "&copy; OpenStreetMap contributors")
	v.SetDefault("map.route_color", "red")
	v.SetDefault("map.route_opacity", 0.5)
	v.SetDefault("map.plane_glyph", "✈")
	v.SetDefault("map.cache_ttl", 600)

	v.SetDefault("windfeed.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("windfeed.poll_interval", "10m")
	v.SetDefault("windfeed.stations", []map[string]any{})

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FLIGHTPATH_GEODESY_DEFAULT_POINTS → geodesy.default_points
	v.SetEnvPrefix("FLIGHTPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	g := c.Geodesy
	if g.DefaultPoints < 2 {
		errs = append(errs, fmt.Sprintf("geodesy.default_points must be at least 2, got %d", g.DefaultPoints))
	}
	if g.MaxPoints < g.DefaultPoints {
		errs = append(errs, fmt.Sprintf("geodesy.max_points (%d) must not be below default_points (%d)", g.MaxPoints, g.DefaultPoints))
	}
	if g.MarkerDivisor < 1 {
		errs = append(errs, "geodesy.marker_divisor must be at least 1")
	}
	if g.WindSegmentPoints < 2 {
		errs = append(errs, "geodesy.wind_segment_points must be at least 2")
	}
	if g.CorridorPadDeg < 0 {
		errs = append(errs, "geodesy.corridor_pad_deg must not be negative")
	}
	for i, l := range g.ZoomLevels {
		if l.MaxKm <= 0 {
			errs = append(errs, fmt.Sprintf("geodesy.zoom_levels[%d].max_km must be positive", i))
		}
	}

	if err := c.Map.DefaultStart().Validate(); err != nil {
		errs = append(errs, "map.default_start: "+err.Error())
	}
	if err := c.Map.DefaultEnd().Validate(); err != nil {
		errs = append(errs, "map.default_end: "+err.Error())
	}
	if c.Map.TileURL == "" {
		errs = append(errs, "map.tile_url is required")
	}
	if c.Map.RouteOpacity < 0 || c.Map.RouteOpacity > 1 {
		errs = append(errs, "map.route_opacity must be between 0 and 1")
	}

	for i, s := range c.WindFeed.Stations {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("windfeed.stations[%d].id is required", i))
		} else if !domain.ValidStationID(s.ID) {
			errs = append(errs, fmt.Sprintf("windfeed.stations[%d].id %q has invalid characters", i, s.ID))
		}
		if err := (domain.GeoPoint{Lat: s.Lat, Lon: s.Lon}).Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("windfeed.stations[%d]: %s", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
