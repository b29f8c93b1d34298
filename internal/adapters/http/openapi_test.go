package http_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/flightpath/api"
)

func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return doc
}

// TestOpenAPIDocument validates the embedded OpenAPI document.
func TestOpenAPIDocument(t *testing.T) {
	doc := loadOpenAPI(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/map",
		"/v1/map",
		"/v1/flights/plan",
		"/v1/flights/summary",
		"/v1/flights/route.geojson",
		"/v1/flights/bearing",
		"/v1/weather/samples",
		"/v1/health",
		"/v1/ready",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	expectedSchemas := []string{
		"GeoPoint",
		"FlightRequest",
		"RouteSummary",
		"Bearing",
		"BearingResponse",
		"WeatherSample",
		"WindSegment",
		"FlightPlan",
		"Pagination",
		"APIError",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	if op := doc.Paths.Find("/map").Get; op == nil || !op.Deprecated {
		t.Error("legacy /map should be marked deprecated")
	}

	t.Logf("OpenAPI valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

// TestOpenAPIInfo verifies document metadata.
func TestOpenAPIInfo(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "Flightpath API" {
		t.Errorf("expected title 'Flightpath API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(doc.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}
