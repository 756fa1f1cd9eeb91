package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key is absent or expired.
	ErrNotFound = errors.New("key not found")
)

// KV stores opaque values with a time-to-live.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Counter is a fixed-window counter. IncrWindow increments key and, only
// when that increment created the key, sets it to expire after window. The
// pair is a single atomic operation.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
