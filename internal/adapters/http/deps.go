package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightpath/internal/adapters/postgres"
	"github.com/samirrijal/flightpath/internal/adapters/valkey"
	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Flights *usecases.FlightService
	Maps    *usecases.MapService
	Weather *usecases.WeatherService

	// DefaultStart and DefaultEnd fill in endpoints a request leaves out.
	DefaultStart domain.GeoPoint
	DefaultEnd   domain.GeoPoint

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
