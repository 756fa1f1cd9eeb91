package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/zip-weather/internal/store"
	"github.com/i474232898/zip-weather/internal/weather"
)

// KeyPrefix namespaces cached results in the shared store.
const KeyPrefix = "latest_data/"

// ResultCache implements weather.ResultCache as JSON documents in a store.KV.
type ResultCache struct {
	kv store.KV
}

func New(kv store.KV) *ResultCache {
	return &ResultCache{kv: kv}
}

// Key returns the store key for zip.
func Key(zip weather.ZipCode) string {
	return KeyPrefix + string(zip)
}

func (c *ResultCache) Get(ctx context.Context, zip weather.ZipCode) (weather.NormalizedResult, bool, error) {
	key := Key(zip)
	data, err := c.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return weather.NormalizedResult{}, false, nil
	}
	if err != nil {
		return weather.NormalizedResult{}, false, fmt.Errorf("%w: get %s: %v", weather.ErrStore, key, err)
	}

	var result weather.NormalizedResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("cache: undecodable entry %s, treating as miss: %v", key, err)
		return weather.NormalizedResult{}, false, nil
	}
	return result, true, nil
}

func (c *ResultCache) Put(ctx context.Context, zip weather.ZipCode, result weather.NormalizedResult, ttl time.Duration) error {
	key := Key(zip)
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("%w: set %s: %v", weather.ErrStore, key, err)
	}
	return nil
}
