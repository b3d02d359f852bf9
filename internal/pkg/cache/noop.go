package cache

import (
	"context"
	"time"
)

// NoopStore is used when no cache backend is available: every read misses
// and every invalidation succeeds, so the service degrades to uncached
// reads instead of failing.
type NoopStore struct{}

func NewNoop() *NoopStore { return &NoopStore{} }

func (NoopStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }

func (NoopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (NoopStore) Del(ctx context.Context, keys ...string) error { return nil }

func (NoopStore) DelPattern(ctx context.Context, pattern string) error { return nil }

func (NoopStore) Close() error { return nil }
