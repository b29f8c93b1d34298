package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// Subjects used by the flightpath services.
const (
	SubjectPlanComputed   = "flightpath.plans.computed"
	SubjectWeatherPrefix  = "flightpath.weather."
	SubjectWeatherAll     = "flightpath.weather.>"
	SubjectBroadcast      = "flightpath.updates.broadcast"
	streamPlans           = "FLIGHT_PLANS"
	streamWeather         = "WEATHER_SAMPLES"
	weatherConsumerPrefix = "weather-cache-"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// PlanComputedEvent is the payload announced when a flight plan is computed.
// The path itself is left out; subscribers recompute or fetch it.
type PlanComputedEvent struct {
	Type             string              `json:"type"`
	Start            domain.GeoPoint     `json:"start"`
	End              domain.GeoPoint     `json:"end"`
	Summary          domain.RouteSummary `json:"summary"`
	Points           int                 `json:"points"`
	DepartureBearing domain.Bearing      `json:"departure_bearing"`
	ArrivalBearing   domain.Bearing      `json:"arrival_bearing"`
	WindSamples      int                 `json:"wind_samples"`
	ComputedAt       time.Time           `json:"computed_at"`
}

// WeatherSampleEvent wraps a stored wind sample.
type WeatherSampleEvent struct {
	Type   string               `json:"type"`
	Sample domain.WeatherSample `json:"sample"`
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      streamPlans,
			Subjects:  []string{SubjectPlanComputed},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      streamWeather,
			Subjects:  []string{SubjectWeatherAll},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// NewPlanComputedEvent summarizes a plan for the broker.
func NewPlanComputedEvent(plan *domain.FlightPlan) PlanComputedEvent {
	return PlanComputedEvent{
		Type:             "plan_computed",
		Start:            plan.Start,
		End:              plan.End,
		Summary:          plan.Summary,
		Points:           len(plan.Path),
		DepartureBearing: plan.DepartureBearing,
		ArrivalBearing:   plan.ArrivalBearing,
		WindSamples:      len(plan.WindSamples),
		ComputedAt:       plan.ComputedAt,
	}
}

func (p *Publisher) PublishFlightPlan(ctx context.Context, plan *domain.FlightPlan) error {
	data, err := json.Marshal(NewPlanComputedEvent(plan))
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(SubjectPlanComputed, data, nats.Context(ctx)); err != nil {
		return err
	}
	return p.PublishBroadcast(ctx, data)
}

func (p *Publisher) PublishWeatherSample(ctx context.Context, sample *domain.WeatherSample) error {
	data, err := json.Marshal(WeatherSampleEvent{Type: "weather_sample", Sample: *sample})
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(WeatherSubject(sample.Station), data, nats.Context(ctx)); err != nil {
		return err
	}
	return p.PublishBroadcast(ctx, data)
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// WeatherSubject returns the subject of one station's samples. Characters
// that NATS treats as tokens are replaced.
func WeatherSubject(station string) string {
	b := []byte(station)
	for i, c := range b {
		switch c {
		case '.', '*', '>', ' ', '\t':
			b[i] = '_'
		}
	}
	return SubjectWeatherPrefix + string(b)
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
