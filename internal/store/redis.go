// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const mtimeField = "mtime"
const dataField = "data"

// RedisBackend stores blobs in Redis hashes. The modification timestamp is
// kept alongside the payload since Redis has no per-key metadata.
type RedisBackend struct {
	client *redis.Client
	logger zerolog.Logger
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(cfg RedisConfig, logger zerolog.Logger) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis store")

	return &RedisBackend{client: client, logger: logger}, nil
}

// Get retrieves a blob and its stored modification time.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	vals, err := b.client.HMGet(ctx, key, dataField, mtimeField).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis hmget %s: %w", key, err)
	}
	if vals[0] == nil {
		return nil, time.Time{}, ErrNotFound
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("redis key %s holds unexpected type", key)
	}

	var mod time.Time
	if raw, ok := vals[1].(string); ok {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			b.logger.Warn().Err(err).Str("key", key).Msg("unparseable mtime, treating blob as just written")
			parsed = time.Now()
		}
		mod = parsed
	}

	return []byte(data), mod, nil
}

// Put stores the blob and stamps it with the current time.
func (b *RedisBackend) Put(ctx context.Context, key string, data []byte) error {
	err := b.client.HSet(ctx, key,
		dataField, data,
		mtimeField, time.Now().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// HealthCheck checks if Redis is available.
func (b *RedisBackend) HealthCheck(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
