package weather

import (
	"context"
	"time"
)

// Geocoder resolves a ZIP code to a location. found is false when the
// provider answered successfully with no candidates.
type Geocoder interface {
	Lookup(ctx context.Context, zip ZipCode) (point GeoPoint, found bool, err error)
}

// ForecastFetcher retrieves the raw forecast for a location.
type ForecastFetcher interface {
	Fetch(ctx context.Context, point GeoPoint) (RawForecast, error)
}

// ResultCache is the contract the cache-aside layer must satisfy. A miss
// (found=false) covers both never-stored and expired entries; backing store
// failures are returned as errors wrapping ErrStore.
type ResultCache interface {
	Get(ctx context.Context, zip ZipCode) (result NormalizedResult, found bool, err error)
	Put(ctx context.Context, zip ZipCode, result NormalizedResult, ttl time.Duration) error
}

// FetchEvent describes one successful upstream fetch.
type FetchEvent struct {
	Zip       ZipCode   `json:"zip"`
	Timezone  string    `json:"timezone"`
	FetchedAt time.Time `json:"fetched_at"`
	Days      int       `json:"days"`
}

// Publisher receives fetch events. Implementations must not block.
type Publisher interface {
	Publish(event FetchEvent)
}
