package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

const (
	pingTimeout = 5 * time.Second
	scanBatch   = 100
)

// Storage keeps each key as one Redis string under the chefgenie prefix.
// Namespaces with a configured TTL expire on their own.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New connects to the server named by cfg.URL and checks it answers
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client, e.g. one pointed at miniredis
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, model.ErrKeyNotFound
	case err != nil:
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (s *Storage) Set(ctx context.Context, key storage.Key, value []byte) error {
	if err := s.client.Set(ctx, redisKey(key), value, s.cfg.ttlFor(key.Namespace)).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key storage.Key) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Stats counts the prefixed keys and sums the length of their values.
// Keys that expire mid-scan count with length zero.
func (s *Storage) Stats(ctx context.Context) (keys int, bytes int64, err error) {
	iter := s.client.Scan(ctx, 0, keyPrefix+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			return 0, 0, fmt.Errorf("strlen %s: %w", iter.Val(), err)
		}
		keys++
		bytes += n
	}
	if err := iter.Err(); err != nil {
		return 0, 0, fmt.Errorf("scan: %w", err)
	}
	return keys, bytes, nil
}
