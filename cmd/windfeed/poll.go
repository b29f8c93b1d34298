package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/flightpath/internal/adapters/openmeteo"
	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/metrics"
)

const feedSource = "open-meteo"

type windSource interface {
	Current(ctx context.Context, st openmeteo.Station) (domain.WeatherSample, error)
}

type sampleSink interface {
	Ingest(ctx context.Context, source string, samples []domain.WeatherSample) error
}

// poller fetches every station concurrently and stores the round as one batch.
type poller struct {
	source      windSource
	sink        sampleSink
	stations    []openmeteo.Station
	concurrency int
}

// pollAll runs one round and returns how many samples were stored.
func (p *poller) pollAll(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.WindFeedPollDuration.Observe(time.Since(start).Seconds()) }()

	concurrency := p.concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		samples []domain.WeatherSample
	)
	sem := make(chan struct{}, concurrency)

	for _, st := range p.stations {
		wg.Add(1)
		go func(st openmeteo.Station) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s, err := p.source.Current(ctx, st)
			if err != nil {
				metrics.WindFeedPollErrors.WithLabelValues(st.ID).Inc()
				slog.Warn("wind poll failed", "station", st.ID, "error", err)
				return
			}
			mu.Lock()
			samples = append(samples, s)
			mu.Unlock()
		}(st)
	}
	wg.Wait()

	if len(samples) == 0 {
		return 0
	}
	if err := p.sink.Ingest(ctx, feedSource, samples); err != nil {
		slog.Error("store wind samples failed", "count", len(samples), "error", err)
		return 0
	}
	slog.Info("wind samples stored", "count", len(samples), "stations", len(p.stations))
	return len(samples)
}

// run polls immediately and then on every tick until ctx is cancelled.
func (p *poller) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.pollAll(ctx)
	for {
		select {
		case <-ticker.C:
			p.pollAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}
