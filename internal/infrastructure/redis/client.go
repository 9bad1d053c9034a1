
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize     = 20
	defaultMinIdleConns = 2
)

// NewClient connects to Redis, which backs the idempotency cache and
// the event stream sink. URL options (pool_size, min_idle_conns) win
// over the defaults.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = defaultMinIdleConns
	}

	client := redis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
