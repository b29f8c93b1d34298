package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/flightpath/internal/pkg/metrics"
)

// LegacyMapSunset is when the unversioned /map endpoint goes away.
var LegacyMapSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited",
				"too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		// The map page is meant to be embedded, so framing stays allowed there.
		if c.Path() != "/map" && c.Path() != "/v1/map" {
			c.Set("X-Frame-Options", "DENY")
		}
		return c.Next()
	})

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/map", SunsetDate: LegacyMapSunset, Alternative: "/v1/map"},
	}))

	app.Use(ETagMiddleware())

	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Legacy map endpoint with the original query names
	app.Get("/map", timeout.NewWithContext(MapHandler(deps), 15*time.Second))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/map", timeout.NewWithContext(MapHandler(deps), 15*time.Second))
	v1.Post("/map", timeout.NewWithContext(MapPostHandler(deps), 15*time.Second))
	v1.Get("/flights/plan", timeout.NewWithContext(PlanHandler(deps), 15*time.Second))
	v1.Post("/flights/plan", timeout.NewWithContext(PlanPostHandler(deps), 15*time.Second))
	v1.Get("/flights/summary", timeout.NewWithContext(SummaryHandler(deps), 15*time.Second))
	v1.Get("/flights/route.geojson", timeout.NewWithContext(RouteGeoJSONHandler(deps), 15*time.Second))
	v1.Get("/flights/bearing", timeout.NewWithContext(BearingHandler(deps), 15*time.Second))
	v1.Get("/weather/samples", timeout.NewWithContext(ListWeatherHandler(deps), 15*time.Second))
	v1.Post("/weather/samples", timeout.NewWithContext(IngestWeatherHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
