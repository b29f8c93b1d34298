package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn     *nats.Conn
	js       nats.JetStreamContext
	consumer string
	subs     []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own connection. Each instance
// name gets its own durable consumer, so every API replica sees every sample.
func NewSubscriber(url, instance string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, consumer: weatherConsumerPrefix + instance}, nil
}

func (s *Subscriber) SubscribeWeatherSamples(ctx context.Context, handler func(ctx context.Context, sample *domain.WeatherSample) error) error {
	sub, err := s.js.Subscribe(SubjectWeatherAll, func(msg *nats.Msg) {
		var event WeatherSampleEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("drop malformed weather event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event.Sample); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.consumer),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
