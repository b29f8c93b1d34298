package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/flightpath/internal/app"
	"github.com/samirrijal/flightpath/internal/core/domain"
	"github.com/samirrijal/flightpath/internal/pkg/config"
	"github.com/samirrijal/flightpath/internal/pkg/logging"
	"github.com/samirrijal/flightpath/internal/workflows"
)

const (
	scheduleID       = "flightpath-map-warmup"
	workflowIDPrefix = "map-warmup-"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s worker|schedule|run\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load("flightpath-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "worker":
		err = runWorker(ctx, cfg, c)
	case "schedule":
		err = createSchedule(ctx, cfg, c)
	case "run":
		err = runOnce(ctx, cfg, c)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runWorker(ctx context.Context, cfg *config.Config, c client.Client) error {
	svc, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	if svc.Cache == nil {
		slog.Warn("no cache configured, warm-ups will render but not be kept")
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.WarmMapsWorkflow)
	w.RegisterActivity(&workflows.WarmActivities{
		Flights: svc.Flights,
		Maps:    svc.Maps,
	})

	slog.Info("warmer worker started", "queue", cfg.Temporal.TaskQueue, "pairs", len(cfg.Temporal.WarmPairs))
	return w.Run(worker.InterruptCh())
}

func createSchedule(ctx context.Context, cfg *config.Config, c client.Client) error {
	handle, err := c.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: scheduleID,
		Spec: client.ScheduleSpec{
			Intervals: []client.ScheduleIntervalSpec{{Every: cfg.Temporal.WarmInterval}},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        workflowIDPrefix + "scheduled",
			Workflow:  workflows.WarmMapsWorkflow,
			Args:      []interface{}{warmInput(cfg)},
			TaskQueue: cfg.Temporal.TaskQueue,
		},
	})
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	slog.Info("warm-up scheduled", "schedule", handle.GetID(), "every", cfg.Temporal.WarmInterval)
	return nil
}

func runOnce(ctx context.Context, cfg *config.Config, c client.Client) error {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowIDPrefix + time.Now().UTC().Format("20060102T150405"),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.WarmMapsWorkflow, warmInput(cfg))
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}

	var report workflows.WarmReport
	if err := run.Get(ctx, &report); err != nil {
		return fmt.Errorf("workflow %s: %w", run.GetID(), err)
	}
	for _, r := range report.Warmed {
		slog.Info("warmed", "pair", r.Name, "distanceKm", r.DistanceKm, "zoom", r.ZoomLevel, "bytes", r.PageBytes)
	}
	if len(report.Failed) > 0 {
		slog.Warn("some pairs failed", "pairs", report.Failed)
	}
	return nil
}

func warmInput(cfg *config.Config) workflows.WarmInput {
	pairs := make([]workflows.RoutePair, 0, len(cfg.Temporal.WarmPairs))
	for _, p := range cfg.Temporal.WarmPairs {
		pairs = append(pairs, workflows.RoutePair{
			Name:  p.Name,
			Start: domain.GeoPoint{Lat: p.StartLat, Lon: p.StartLon},
			End:   domain.GeoPoint{Lat: p.EndLat, Lon: p.EndLon},
		})
	}
	return workflows.WarmInput{
		Pairs:       pairs,
		Points:      cfg.Geodesy.DefaultPoints,
		IncludeWind: cfg.Temporal.WarmWind,
	}
}
