package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/payflow/internal/usecase"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
// It backs HTTP-level replay: a request with a seen Idempotency-Key
// gets the stored response back instead of re-running the saga. The
// database unique indexes remain the source of truth; this layer only
// short-circuits the common retry.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "payflow:idempotency:",
	}
}

// CheckAndSet atomically checks if key exists, sets if not. When the
// key is new and no response is given, a placeholder marks the request
// in flight so a concurrent retry observes it.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, existing, nil
	}
	if err != redis.Nil {
		return false, nil, err
	}

	if response != nil {
		err = s.client.Set(ctx, fullKey, response, ttl).Err()
		if err != nil {
			return false, nil, err
		}
	} else {
		set, err := s.client.SetNX(ctx, fullKey, usecase.IdempotencyInFlight, ttl).Result()
		if err != nil {
			return false, nil, err
		}
		if !set {
			// Another request got there first
			existing, err := s.client.Get(ctx, fullKey).Bytes()
			if err != nil && err != redis.Nil {
				return false, nil, err
			}
			return true, existing, nil
		}
	}

	return false, nil, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	fullKey := s.prefix + key
	return s.client.Set(ctx, fullKey, response, ttl).Err()
}

// Delete releases an idempotency key, allowing the request to be
// retried. Used when the guarded request fails.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
