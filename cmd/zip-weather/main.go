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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/zip-weather/internal/api/http"
	"github.com/i474232898/zip-weather/internal/cache"
	"github.com/i474232898/zip-weather/internal/config"
	"github.com/i474232898/zip-weather/internal/events"
	"github.com/i474232898/zip-weather/internal/ratelimit"
	"github.com/i474232898/zip-weather/internal/scheduler"
	"github.com/i474232898/zip-weather/internal/store"
	"github.com/i474232898/zip-weather/internal/weather"
	"github.com/i474232898/zip-weather/internal/weather/providers"
)

// backend is what the cache, the rate gate and the health check need from
// the shared store.
type backend interface {
	store.KV
	store.Counter
	httpapi.Pinger
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared store for cache entries and rate counters.
	var (
		shared  backend
		sweeper scheduler.Sweeper
	)
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rs, err := store.ConnectRedis(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect store: %v", err)
		}
		defer rs.Close()
		shared = rs
	} else {
		log.Println("INFO: REDIS_URL not set; using in-memory store")
		mem := store.NewMemoryStore()
		shared = mem
		sweeper = mem
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	opts := []weather.Option{weather.WithCacheTTL(cfg.CacheTTL)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("failed to create event publisher: %v", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			publisher.Close(flushCtx)
		}()
		opts = append(opts, weather.WithPublisher(publisher))
	}

	// Core service orchestrating cache, geocoder and forecast provider.
	service := weather.NewService(
		cache.New(shared),
		providers.NewOpenMeteoGeocoder(httpClient, cfg.GeocodingURL),
		providers.NewOpenMeteoProvider(httpClient, cfg.ForecastURL),
		opts...,
	)

	sched := scheduler.New(cfg.WarmZips, cfg.WarmInterval, service, sweeper)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "zip-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "unknown server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${ip} ${method} ${path} (${latency})\n",
	}))
	app.Use(recover.New())

	gate := ratelimit.New(shared, cfg.RateLimit, cfg.RateWindow)
	httpapi.RegisterRoutes(app, httpapi.NewHandler(gate, service, shared))

	go func() {
		log.Printf("server starting on :%s", cfg.Port)
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
