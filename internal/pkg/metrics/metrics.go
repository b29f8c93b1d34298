package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flightpath",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flightpath",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Route engine metrics
	PlansComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "engine",
		Name:      "plans_total",
		Help:      "Flight plans computed, by outcome (ok, invalid, ambiguous, error)",
	}, []string{"outcome"})

	RouteDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flightpath",
		Subsystem: "engine",
		Name:      "route_distance_km",
		Help:      "Great-circle distance of planned routes",
		Buckets:   []float64{100, 500, 1000, 2000, 5000, 10000, 15000, 20050},
	})

	ZoomSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "engine",
		Name:      "zoom_selected_total",
		Help:      "Zoom levels chosen for planned routes",
	}, []string{"zoom"})

	PlanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flightpath",
		Subsystem: "engine",
		Name:      "plan_duration_seconds",
		Help:      "Time to compute a flight plan, wind lookup included",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	MapRenders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "map",
		Name:      "renders_total",
		Help:      "Map pages rendered (cache misses)",
	})

	// Weather metrics
	WindSamplesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "weather",
		Name:      "wind_samples_ingested_total",
		Help:      "Total wind samples stored",
	}, []string{"source"})

	WindFeedPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flightpath",
		Subsystem: "weather",
		Name:      "feed_poll_duration_seconds",
		Help:      "Duration of a wind feed polling round",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	WindFeedPollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "weather",
		Name:      "feed_poll_errors_total",
		Help:      "Total wind feed poll errors",
	}, []string{"station"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flightpath",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightpath",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flightpath",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flightpath",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flightpath",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObservePlan records the outcome of one planning call.
func ObservePlan(outcome string, distanceKm float64, zoom int, elapsed time.Duration) {
	PlansComputed.WithLabelValues(outcome).Inc()
	PlanDuration.Observe(elapsed.Seconds())
	if outcome == "ok" {
		RouteDistance.Observe(distanceKm)
		ZoomSelected.WithLabelValues(strconv.Itoa(zoom)).Inc()
	}
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat without
// importing pgxpool here.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
