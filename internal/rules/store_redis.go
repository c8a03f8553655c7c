package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bre-gateway/pkg/platform/sentinel"
)

// RedisStorage keeps rule documents in Redis so multiple gateway instances
// share one rule set. Each logical path becomes a key under the configured
// prefix; an index set tracks known paths for listing.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates Redis-backed rule storage.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "rules:"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) indexKey() string {
	return s.prefix + "__index"
}

func (s *RedisStorage) ReadRaw(ctx context.Context, path string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.prefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read %s: %w", path, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

func (s *RedisStorage) WriteRaw(ctx context.Context, path string, raw []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.prefix+path, raw, 0)
	pipe.SAdd(ctx, s.indexKey(), path)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *RedisStorage) List(ctx context.Context) ([]string, error) {
	paths, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return paths, nil
}
