package cache

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a small key/value cache. Values are stored JSON encoded.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Increment adds one to the counter at key and returns the new value. The ttl is applied
	// when the counter is created and is not extended by later increments.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// GetOrSet returns the cached value for key, or calls fn and caches its result.
// Cache failures never fail the call, fn's result is returned regardless.
func GetOrSet[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var result T
	err := s.Get(ctx, key, &result)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrMiss) {
		log.Warnf("cache read for %s failed: %v", key, err)
	}

	result, err = fn()
	if err != nil {
		return result, err
	}
	if err := s.Set(ctx, key, result, ttl); err != nil {
		log.Warnf("cache write for %s failed: %v", key, err)
	}
	return result, nil
}
