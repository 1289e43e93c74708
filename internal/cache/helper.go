package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"murmur/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest. The first return is false
// on a miss; a nil client always misses. A stored value that fails to
// unmarshal is reported as an error, not a miss.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with the given TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside is the cache-aside read path: serve from Redis when the key is
// present, otherwise run fetch (which must fill dest) and store the result.
// Cache trouble on either side is logged and degraded to the source, so a
// broken Redis never fails a read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed, falling back to source",
			"key", key, "error", err)
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed",
			"key", key, "error", err)
	}
	return nil
}
