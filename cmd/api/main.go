package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/flightpath/internal/adapters/http"
	natsadapter "github.com/samirrijal/flightpath/internal/adapters/nats"
	"github.com/samirrijal/flightpath/internal/app"
	"github.com/samirrijal/flightpath/internal/pkg/config"
	"github.com/samirrijal/flightpath/internal/pkg/logging"
	"github.com/samirrijal/flightpath/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("flightpath-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	svc, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}
	defer svc.Close()

	// Wind samples stored by the feed or other replicas invalidate cached overlays here.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, app.InstanceName("api"))
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeWeatherSamples(ctx, svc.Generation.OnSample); err != nil {
			slog.Warn("subscribe weather samples failed", "error", err)
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	deps := &http.Dependencies{
		Flights:      svc.Flights,
		Maps:         svc.Maps,
		Weather:      svc.Weather,
		DefaultStart: cfg.Map.DefaultStart(),
		DefaultEnd:   cfg.Map.DefaultEnd(),
		NATS:         natsConn,
		DB:           svc.DB,
		Cache:        svc.Cache,
	}

	// Fiber
	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Flightpath API",
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(fiberApp, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", http.Version)
		if err := fiberApp.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
