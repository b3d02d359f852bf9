// Package cache is the substrate for the read-through caches. The cache is
// strictly an optimization: callers treat every error as a miss on reads and
// log-and-continue on invalidations.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching a glob pattern. Invalidations are
	// idempotent, so concurrent calls are safe.
	DelPattern(ctx context.Context, pattern string) error
	Close() error
}
