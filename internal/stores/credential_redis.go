package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// swapCredentialLua replaces the value at KEYS[1] only when it still equals ARGV[1].
// KEYS[1] = record key
// ARGV[1] = expected current value
// ARGV[2] = replacement value
//
// Returns 1 when swapped, 0 when the key is missing or holds a different value.
var swapCredentialLua = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// RedisCredentialStore keeps credential records as plain Redis strings
// without expiry. It works against standalone, sentinel and cluster
// deployments through redis.UniversalClient.
type RedisCredentialStore struct {
	redis redis.UniversalClient
}

// NewRedisCredentialStore wraps an existing client. The caller owns the
// client's lifecycle.
func NewRedisCredentialStore(client redis.UniversalClient) *RedisCredentialStore {
	return &RedisCredentialStore{redis: client}
}

func (s *RedisCredentialStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return data, nil
}

func (s *RedisCredentialStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.redis.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// CompareAndSwap writes value only if the key currently holds expected. A nil
// expected means the key must not exist yet.
func (s *RedisCredentialStore) CompareAndSwap(ctx context.Context, key string, expected, value []byte) error {
	if expected == nil {
		created, err := s.redis.SetNX(ctx, key, value, 0).Result()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if !created {
			return ErrConflict
		}
		return nil
	}

	swapped, err := swapCredentialLua.Run(ctx, s.redis, []string{key}, expected, value).Int()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if swapped != 1 {
		return ErrConflict
	}
	return nil
}
