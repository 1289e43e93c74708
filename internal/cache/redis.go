// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"murmur/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// redisOptions accepts either a bare host:port or a redis:// URL.
func redisOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects the package-level client to the given address. Redis is
// optional: on any failure the client stays nil and every cache operation
// degrades to a no-op.
func InitRedis(addr string) {
	opts, err := redisOptions(addr)
	if err != nil {
		middleware.Logger.Warn("invalid redis address, continuing without cache",
			"addr", addr, "error", err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, continuing without cache",
			"addr", opts.Addr, "error", err)
		client = nil
		return
	}

	middleware.Logger.Info("redis connected", "addr", opts.Addr)
	client = c
}

// SetClient overrides the Redis client. Used by tests with miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection if one is open.
func Close() {
	if client != nil {
		_ = client.Close()
	}
}
