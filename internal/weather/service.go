package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultCacheTTL is how long a normalized result stays cached.
const DefaultCacheTTL = 30 * time.Minute

// Service orchestrates the cache-aside lookup and the geocode, forecast and
// normalize chain behind it.
type Service struct {
	cache     ResultCache
	geocoder  Geocoder
	forecasts ForecastFetcher
	publisher Publisher
	ttl       time.Duration
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now, used for the daily cut-off and fetch events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sends an event after every stored upstream fetch.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a new Service.
func NewService(cache ResultCache, geocoder Geocoder, forecasts ForecastFetcher, opts ...Option) *Service {
	s := &Service{
		cache:     cache,
		geocoder:  geocoder,
		forecasts: forecasts,
		ttl:       DefaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the normalized weather for zip, from the cache when a
// fresh entry exists and from the providers otherwise. Nothing is cached on
// any failure path.
func (s *Service) Resolve(ctx context.Context, zip ZipCode) (NormalizedResult, Origin, error) {
	if _, err := ParseZip(string(zip)); err != nil {
		return NormalizedResult{}, "", err
	}

	cached, found, err := s.cache.Get(ctx, zip)
	if err != nil {
		return NormalizedResult{}, "", err
	}
	if found {
		log.Printf("weather: cache hit for %s", zip)
		return cached, OriginCache, nil
	}

	result, err := s.fetchAndStore(ctx, zip)
	if err != nil {
		return NormalizedResult{}, "", err
	}
	return result, OriginAPI, nil
}

// Refresh skips the cache lookup and re-fetches zip, overwriting any entry.
func (s *Service) Refresh(ctx context.Context, zip ZipCode) error {
	if _, err := ParseZip(string(zip)); err != nil {
		return err
	}
	_, err := s.fetchAndStore(ctx, zip)
	return err
}

func (s *Service) fetchAndStore(ctx context.Context, zip ZipCode) (NormalizedResult, error) {
	point, found, err := s.geocoder.Lookup(ctx, zip)
	if err != nil {
		return NormalizedResult{}, err
	}
	if !found {
		return NormalizedResult{}, fmt.Errorf("%w: %s", ErrNotFound, zip)
	}

	raw, err := s.forecasts.Fetch(ctx, point)
	if err != nil {
		return NormalizedResult{}, err
	}

	now := s.now()
	result, err := Normalize(raw, now)
	if err != nil {
		log.Printf("weather: normalize failed for %s: %v", zip, err)
		return NormalizedResult{}, err
	}

	if err := s.cache.Put(ctx, zip, result, s.ttl); err != nil {
		return NormalizedResult{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(FetchEvent{
			Zip:       zip,
			Timezone:  result.Timezone,
			FetchedAt: now.UTC(),
			Days:      len(result.DailyWeather),
		})
	}
	return result, nil
}
