package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "agedist:visits:"

// RedisStore keeps counters as plain string values without expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a connected client. Anything go-redis builds, including
// the platform client, satisfies redis.UniversalClient.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Read performs a GET.
//
// Errors: ErrNotFound on a missing key, ErrCorrupt when the value is not an integer.
func (s *RedisStore) Read(ctx context.Context, key string) (int, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read visit counter: %w", err)
	}
	return parseValue(key, raw)
}

// Write performs a SET with no TTL, overwriting any existing value.
func (s *RedisStore) Write(ctx context.Context, key string, value int) error {
	if err := s.client.Set(ctx, redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("write visit counter: %w", err)
	}
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}
