package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/nhasan-dev/district-travel-advisor/internal/api/http"
	"github.com/nhasan-dev/district-travel-advisor/internal/config"
	"github.com/nhasan-dev/district-travel-advisor/internal/district"
	"github.com/nhasan-dev/district-travel-advisor/internal/scheduler"
	"github.com/nhasan-dev/district-travel-advisor/internal/store"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Static district directory, loaded once.
	directory, err := district.NewDirectory()
	if err != nil {
		log.Fatalf("failed to load district directory: %v", err)
	}
	log.Printf("loaded %d districts", directory.Len())

	// Cache store: durable Redis with a local fallback, or in-memory only
	// when no Redis address is configured.
	local := store.NewMemory(cfg.ForecastMaxAge)
	var cache weather.Store = local
	if cfg.RedisAddr != "" {
		durable := store.NewRedis(cfg.RedisAddr, cfg.RedisTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := durable.Ping(pingCtx); err != nil {
			log.Printf("WARN: redis at %s unreachable at startup: %v", cfg.RedisAddr, err)
		}
		cancel()
		cache = store.NewFailover(durable, local)
	} else {
		log.Println("INFO: REDIS_ADDR not set, using in-memory cache only")
	}

	// Shared HTTP client for outbound Open-Meteo calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := providers.NewOpenMeteo(httpClient, cfg.ForecastURL, cfg.AirQualityURL, cfg.Timezone)

	// Open-Meteo timestamps come back as wall time in the requested zone, so
	// day boundaries are computed in that zone too.
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Core orchestrator.
	service := weather.NewService(cache, client, directory, weather.ServiceConfig{
		StalenessThreshold: cfg.StalenessThreshold,
		SnapshotTTL:        cfg.SnapshotTTL,
		ForecastDays:       cfg.ForecastDays,
		TargetHour:         cfg.TargetHour,
		Location:           location,
	})

	// Periodic refresher keeps the cache fresh independent of user traffic.
	refresher := scheduler.NewRefresher(service, cfg.MinRefreshInterval)
	sched := scheduler.New(refresher, cfg.RefreshInterval, cfg.RefreshJobTimeout, cfg.RefreshRetryAfter)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "district-travel-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.TopN)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
