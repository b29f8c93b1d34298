//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/flightpath/internal/adapters/http"
	"github.com/samirrijal/flightpath/internal/adapters/mapview"
	"github.com/samirrijal/flightpath/internal/adapters/postgres"
	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/usecases"
	"github.com/samirrijal/flightpath/internal/pkg/config"
)

// setupTestDB connects to the database from FLIGHTPATH_DATABASE_* settings.
// The schema is expected to be migrated already.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("flightpath-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

// setupTestDeps wires the real weather repository, no cache or broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	renderer, err := mapview.New(mapview.Options{TileURL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	repo := postgres.NewWeatherSampleRepo(db)
	opts := usecases.DefaultPlanOptions()
	flights := usecases.NewFlightService(repo, nil, nil, opts)

	return &http.Dependencies{
		Flights:      flights,
		Maps:         usecases.NewMapService(flights, renderer, nil, opts.CacheTTL),
		Weather:      usecases.NewWeatherService(repo, nil, nil),
		DefaultStart: losAngeles,
		DefaultEnd:   telAviv,
		DB:           db,
	}
}

// uniqueStation keeps runs from colliding on the (station, observed_at) key.
func uniqueStation(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestIngestAndList_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	app := setupApp(setupTestDeps(t, db))

	station := uniqueStation("kef")
	body := fmt.Sprintf(`[{"station":%q,"coord":{"lat":63.98,"lon":-22.6},"wind_direction":250,"wind_speed":40}]`, station)
	req := httptest.NewRequest("POST", "/v1/weather/samples", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	url := "/v1/weather/samples?min_lat=63.9&min_lon=-22.7&max_lat=64.1&max_lon=-22.5&limit=200"
	resp, err = app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Data []domain.WeatherSample `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	found := false
	for _, s := range page.Data {
		if s.Station == station {
			found = true
			if s.WindDirection != 250 || s.WindSpeed != 40 {
				t.Errorf("unexpected wind %v/%v", s.WindDirection, s.WindSpeed)
			}
		}
	}
	if !found {
		t.Errorf("station %s not returned", station)
	}
}

func TestPlanWithWind_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	// Two stations under the Los Angeles to Tel Aviv arc.
	samples := []domain.WeatherSample{
		{Station: uniqueStation("hudson"), Coord: domain.GeoPoint{Lat: 60.0, Lon: -95.0}, WindDirection: 280, WindSpeed: 30},
		{Station: uniqueStation("baltic"), Coord: domain.GeoPoint{Lat: 55.0, Lon: 20.0}, WindDirection: 240, WindSpeed: 55},
	}
	if err := deps.Weather.Ingest(context.Background(), "test", samples); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/flights/plan?wind=true", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var plan domain.FlightPlan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(plan.WindSamples) < 2 {
		t.Fatalf("expected at least 2 wind samples, got %d", len(plan.WindSamples))
	}
	if len(plan.WindSegments) != len(plan.WindSamples)-1 {
		t.Errorf("expected %d segments, got %d", len(plan.WindSamples)-1, len(plan.WindSegments))
	}
}

func TestListPastLastPage_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	// A box no other test writes to.
	samples := []domain.WeatherSample{
		{Station: uniqueStation("kerguelen-a"), Coord: domain.GeoPoint{Lat: -49.35, Lon: 70.2}, WindDirection: 270, WindSpeed: 60},
		{Station: uniqueStation("kerguelen-b"), Coord: domain.GeoPoint{Lat: -49.3, Lon: 70.25}, WindDirection: 280, WindSpeed: 65},
	}
	if err := deps.Weather.Ingest(context.Background(), "test", samples); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	url := "/v1/weather/samples?min_lat=-49.4&min_lon=70.1&max_lat=-49.2&max_lon=70.3&offset=1000&limit=1"
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Data       []domain.WeatherSample `json:"data"`
		Pagination http.Pagination        `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("expected an empty page, got %d samples", len(page.Data))
	}
	if page.Pagination.Total < 2 {
		t.Errorf("expected total >= 2 past the last page, got %d", page.Pagination.Total)
	}
	if link := resp.Header.Get("Link"); strings.Contains(link, `offset=0&limit=1>; rel="last"`) {
		t.Errorf("last link points at the first page: %s", link)
	}
}

func TestPlanAcrossAntimeridianWithWind_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	pacific := uniqueStation("north-pacific")
	milan := uniqueStation("milan")
	samples := []domain.WeatherSample{
		{Station: pacific, Coord: domain.GeoPoint{Lat: 47.0, Lon: 179.0}, WindDirection: 260, WindSpeed: 70},
		{Station: milan, Coord: domain.GeoPoint{Lat: 45.46, Lon: 9.19}, WindDirection: 90, WindSpeed: 10},
	}
	if err := deps.Weather.Ingest(context.Background(), "test", samples); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	url := "/v1/flights/plan?start_lat=35.6762&start_lon=139.6503&end_lat=37.7749&end_lon=-122.4194&wind=true"
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var plan domain.FlightPlan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, s := range plan.WindSamples {
		if s.Station == milan {
			t.Errorf("sample from %s pulled into a Pacific corridor", milan)
		}
		if s.Station == pacific {
			found = true
		}
	}
	if !found {
		t.Errorf("station %s under the route not returned", pacific)
	}
}
