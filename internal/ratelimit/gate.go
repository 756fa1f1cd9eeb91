// Package ratelimit admits callers with a fixed-window counter per identity.
//
// The window starts at an identity's first request and resets when the
// counter expires, so up to twice the limit can pass around a window
// boundary. Denied requests still count.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/zip-weather/internal/store"
	"github.com/i474232898/zip-weather/internal/weather"
)

const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second

	// KeyPrefix namespaces counters in the shared store.
	KeyPrefix = "rate_limit:"
)

// Gate decides whether an identity may make another request.
type Gate struct {
	counter store.Counter
	limit   int64
	window  time.Duration
}

// New creates a Gate. Non-positive limit or window fall back to the defaults.
func New(counter store.Counter, limit int, window time.Duration) *Gate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{counter: counter, limit: int64(limit), window: window}
}

// Allow counts the request and reports whether it is within the limit.
// Store failures are returned, never treated as allow or deny.
func (g *Gate) Allow(ctx context.Context, identity string) (bool, error) {
	count, err := g.counter.IncrWindow(ctx, KeyPrefix+identity, g.window)
	if err != nil {
		return false, fmt.Errorf("%w: rate counter %s: %v", weather.ErrStore, identity, err)
	}
	return count <= g.limit, nil
}
