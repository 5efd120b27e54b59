package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection as one Redis string key holding the
// JSON-encoded array.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a Store backed by the given Redis client. Keys are
// written as "<prefix>:<collection>".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

// GetCollection implements Store. A missing key reads as an empty collection.
func (s *RedisStore) GetCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	data, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read collection %q: %w", name, err)
	}
	return decodeCollection(name, data), nil
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, name string, record interface{}) error {
	current, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read collection %q: %w", name, err)
	}
	data, err := appendRecord(name, current, record)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %q: %w", name, err)
	}
	return nil
}

// ReplaceAll implements Store.
func (s *RedisStore) ReplaceAll(ctx context.Context, name string, records []json.RawMessage) error {
	data, err := encodeCollection(records)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %q: %w", name, err)
	}
	return nil
}

// ConnectRedis initializes and returns a Redis client instance.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}
