package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/usecases"
	"github.com/samirrijal/flightpath/internal/pkg/geospatial"
)

// flightRequestBody is the JSON form of a flight request. Missing endpoints
// fall back to the configured defaults.
type flightRequestBody struct {
	Start       *domain.GeoPoint `json:"start"`
	End         *domain.GeoPoint `json:"end"`
	Points      int              `json:"points"`
	IncludeWind bool             `json:"include_wind"`
}

// BearingResponse is the marker orientation between two points.
type BearingResponse struct {
	Angle   int     `json:"angle"`
	Bucket  string  `json:"bucket"`
	Azimuth float64 `json:"azimuth"`
}

// IngestResponse reports how many samples were stored.
type IngestResponse struct {
	Ingested int `json:"ingested"`
}

// MapHandler renders the flight map page from query parameters.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := planRequestFromQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return sendMap(c, deps, req)
	}
}

// MapPostHandler renders the flight map page from a JSON body.
func MapPostHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := planRequestFromBody(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return sendMap(c, deps, req)
	}
}

func sendMap(c *fiber.Ctx, deps *Dependencies, req usecases.PlanRequest) error {
	page, err := deps.Maps.RenderMap(c.UserContext(), req)
	if err != nil {
		return errFromDomain(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

// PlanHandler returns the full flight plan from query parameters.
func PlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := planRequestFromQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		plan, err := deps.Flights.Plan(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(plan)
	}
}

// PlanPostHandler returns the full flight plan from a JSON body.
func PlanPostHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := planRequestFromBody(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		plan, err := deps.Flights.Plan(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(plan)
	}
}

// SummaryHandler returns distance, zoom and midpoint of a flight.
func SummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := endpointsFromQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		summary, err := deps.Flights.Summary(start, end)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(summary)
	}
}

// RouteGeoJSONHandler returns the flight as a GeoJSON FeatureCollection.
func RouteGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := planRequestFromQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		data, err := deps.Maps.RouteGeoJSON(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// BearingHandler classifies the direction from an origin towards another point.
func BearingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, err := requiredPoint(c, "origin_lat", "origin_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		relative, err := requiredPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := origin.Validate(); err != nil {
			return errFromDomain(c, err)
		}
		if err := relative.Validate(); err != nil {
			return errFromDomain(c, err)
		}

		b := geospatial.ClassifyBearing(origin, relative, c.QueryBool("flipped", false))
		return c.JSON(BearingResponse{
			Angle:   int(b),
			Bucket:  b.Bucket(),
			Azimuth: geospatial.InitialBearing(origin, relative),
		})
	}
}

// ListWeatherHandler returns stored wind samples, optionally inside a box.
func ListWeatherHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Weather == nil {
			return errUnavailable(c, "weather storage not configured")
		}

		bounds, err := boundsFromQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		samples, total, err := deps.Weather.List(c.UserContext(), bounds, offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if samples == nil {
			samples = []domain.WeatherSample{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: samples, Pagination: pg})
	}
}

// IngestWeatherHandler stores a batch of wind samples.
func IngestWeatherHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Weather == nil {
			return errUnavailable(c, "weather storage not configured")
		}

		var samples []domain.WeatherSample
		if err := c.BodyParser(&samples); err != nil {
			return errBadRequest(c, "body must be a JSON array of wind samples")
		}
		if len(samples) == 0 {
			return errBadRequest(c, "at least one sample is required")
		}
		if len(samples) > 500 {
			return errBadRequest(c, "too many samples (max 500)")
		}

		if err := deps.Weather.Ingest(c.UserContext(), "api", samples); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(IngestResponse{Ingested: len(samples)})
	}
}

// --- request parsing ---

func planRequestFromQuery(c *fiber.Ctx, deps *Dependencies) (usecases.PlanRequest, error) {
	start, end, err := endpointsFromQuery(c, deps)
	if err != nil {
		return usecases.PlanRequest{}, err
	}
	points, err := optionalInt(c, "points")
	if err != nil {
		return usecases.PlanRequest{}, err
	}
	return usecases.PlanRequest{
		Start:       start,
		End:         end,
		Points:      points,
		IncludeWind: c.QueryBool("wind", false),
	}, nil
}

func planRequestFromBody(c *fiber.Ctx, deps *Dependencies) (usecases.PlanRequest, error) {
	var body flightRequestBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return usecases.PlanRequest{}, fmt.Errorf("invalid JSON body")
		}
	}
	req := usecases.PlanRequest{
		Start:       deps.DefaultStart,
		End:         deps.DefaultEnd,
		Points:      body.Points,
		IncludeWind: body.IncludeWind,
	}
	if body.Start != nil {
		req.Start = *body.Start
	}
	if body.End != nil {
		req.End = *body.End
	}
	return req, nil
}

func endpointsFromQuery(c *fiber.Ctx, deps *Dependencies) (domain.GeoPoint, domain.GeoPoint, error) {
	start, err := optionalPoint(c, "start_lat", "start_lon", deps.DefaultStart)
	if err != nil {
		return domain.GeoPoint{}, domain.GeoPoint{}, err
	}
	end, err := optionalPoint(c, "end_lat", "end_lon", deps.DefaultEnd)
	if err != nil {
		return domain.GeoPoint{}, domain.GeoPoint{}, err
	}
	return start, end, nil
}

// optionalPoint reads a coordinate pair; each missing half keeps its default.
func optionalPoint(c *fiber.Ctx, latKey, lonKey string, def domain.GeoPoint) (domain.GeoPoint, error) {
	p := def
	var err error
	if v := c.Query(latKey); v != "" {
		if p.Lat, err = parseFloat(latKey, v); err != nil {
			return p, err
		}
	}
	if v := c.Query(lonKey); v != "" {
		if p.Lon, err = parseFloat(lonKey, v); err != nil {
			return p, err
		}
	}
	return p, nil
}

func requiredPoint(c *fiber.Ctx, latKey, lonKey string) (domain.GeoPoint, error) {
	latStr, lonStr := c.Query(latKey), c.Query(lonKey)
	if latStr == "" || lonStr == "" {
		return domain.GeoPoint{}, fmt.Errorf("%s and %s are required", latKey, lonKey)
	}
	lat, err := parseFloat(latKey, latStr)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := parseFloat(lonKey, lonStr)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// boundsFromQuery returns nil when no box is given; a partial box is an error.
func boundsFromQuery(c *fiber.Ctx) (*domain.Bounds, error) {
	keys := []string{"min_lat", "min_lon", "max_lat", "max_lon"}
	values := make([]float64, len(keys))
	present := 0
	for i, k := range keys {
		v := c.Query(k)
		if v == "" {
			continue
		}
		f, err := parseFloat(k, v)
		if err != nil {
			return nil, err
		}
		values[i] = f
		present++
	}
	switch present {
	case 0:
		return nil, nil
	case len(keys):
	default:
		return nil, fmt.Errorf("min_lat, min_lon, max_lat and max_lon must be given together")
	}

	// min_lon > max_lon selects a box across the antimeridian.
	b := &domain.Bounds{MinLat: values[0], MinLon: values[1], MaxLat: values[2], MaxLon: values[3]}
	if b.MinLat > b.MaxLat {
		return nil, fmt.Errorf("min_lat exceeds max_lat")
	}
	return b, nil
}

func optionalInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func parseFloat(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}
