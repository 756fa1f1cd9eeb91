package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/zip-weather/internal/weather"
)

type AppConfig struct {
	Port string

	// RedisURL selects the shared store; empty means in-memory.
	RedisURL string

	GeocodingURL string
	ForecastURL  string
	HTTPTimeout  time.Duration

	CacheTTL   time.Duration
	RateLimit  int
	RateWindow time.Duration

	// ZIP codes kept warm by the scheduler.
	WarmZips     []weather.ZipCode
	WarmInterval time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		RedisURL:     os.Getenv("REDIS_URL"),
		GeocodingURL: getenvDefault("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL:  getenvDefault("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		KafkaTopic:   getenvDefault("KAFKA_TOPIC", "weather-fetches"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RateWindow, err = getenvDuration("RATE_WINDOW", "60s"); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.RateLimit, err = getenvInt("RATE_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT: must be positive, got %d", cfg.RateLimit)
	}

	if cfg.WarmZips, err = parseZips(os.Getenv("WARM_ZIPS")); err != nil {
		return nil, err
	}
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))

	return cfg, nil
}

func parseZips(s string) ([]weather.ZipCode, error) {
	var zips []weather.ZipCode
	for _, item := range splitList(s) {
		z, err := weather.ParseZip(item)
		if err != nil {
			return nil, fmt.Errorf("invalid WARM_ZIPS: %w", err)
		}
		zips = append(zips, z)
	}
	return zips, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
