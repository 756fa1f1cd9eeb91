package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/zip-weather/internal/weather"
)

const (
	msgInvalidZip  = "Missing or invalid zip parameter"
	msgRateLimited = "Rate limit exceeded. Please try again after 30 seconds."
	msgNotFound    = "Could not geocode zip"
	msgServerError = "unknown server error"

	retryAfterSeconds = "30"
)

// RateGate admits or rejects a caller identity.
type RateGate interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// Resolver produces the normalized weather for a ZIP code.
type Resolver interface {
	Resolve(ctx context.Context, zip weather.ZipCode) (weather.NormalizedResult, weather.Origin, error)
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the boundary between HTTP callers and the weather pipeline.
type Handler struct {
	gate     RateGate
	resolver Resolver
	store    Pinger
}

func NewHandler(gate RateGate, resolver Resolver, store Pinger) *Handler {
	return &Handler{gate: gate, resolver: resolver, store: store}
}

// weatherResponse is a NormalizedResult with its origin at the top level.
type weatherResponse struct {
	weather.NormalizedResult
	Source weather.Origin `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchWeather validates zip, checks the rate gate for identity and runs
// the pipeline. It returns the HTTP status and the JSON body to send.
func (h *Handler) FetchWeather(ctx context.Context, zip, identity string) (int, any) {
	z, err := weather.ParseZip(zip)
	if err != nil {
		return fiber.StatusBadRequest, errorResponse{Error: msgInvalidZip}
	}

	allowed, err := h.gate.Allow(ctx, identity)
	if err != nil {
		log.Printf("rate gate failed for %s: %v", identity, err)
		return fiber.StatusInternalServerError, errorResponse{Error: msgServerError}
	}
	if !allowed {
		return fiber.StatusTooManyRequests, errorResponse{Error: msgRateLimited}
	}

	result, origin, err := h.resolver.Resolve(ctx, z)
	switch {
	case err == nil:
		return fiber.StatusOK, weatherResponse{NormalizedResult: result, Source: origin}
	case errors.Is(err, weather.ErrNotFound):
		return fiber.StatusUnprocessableEntity, errorResponse{Error: msgNotFound}
	default:
		log.Printf("fetch weather failed for %s: %v", z, err)
		return fiber.StatusInternalServerError, errorResponse{Error: msgServerError}
	}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.health)

	v1 := app.Group("/api/v1")
	v1.Get("/data/fetch_data", h.fetchData)
}

func (h *Handler) fetchData(c *fiber.Ctx) error {
	status, body := h.FetchWeather(c.UserContext(), c.Query("zip"), c.IP())
	if status == fiber.StatusTooManyRequests {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	return c.Status(status).JSON(body)
}

func (h *Handler) health(c *fiber.Ctx) error {
	if h.store != nil {
		if err := h.store.Ping(c.UserContext()); err != nil {
			log.Printf("health: store ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "zip-weather",
	})
}
