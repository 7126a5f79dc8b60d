package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/signup-service/internal/domain"
)

// ErrMiss is returned when a key is absent or already expired.
var ErrMiss = errors.New("cache miss")

// Store is a key-value store with per-key expiry.
type Store interface {
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	// GetAndDelete atomically reads and removes key; concurrent callers for
	// the same key observe the value at most once.
	GetAndDelete(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by go-redis.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: non-positive ttl %s", key, ttl)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	return result(data, err)
}

func (s *redisStore) GetAndDelete(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetDel(ctx, key).Bytes()
	return result(data, err)
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func result(data []byte, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return data, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: redis: %v", domain.ErrStoreUnavailable, err)
}
