package cache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions contains configuration for the Redis cache backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a Redis-backed cache implementation.
type RedisCache struct {
	client *redis.Client
}

const (
	connectionTimeout = 5 * time.Second
	scanBatchSize     = 100
)

// NewRedisCache creates a new Redis cache.
func NewRedisCache(opts RedisOptions) (RawCache, error) {
	// Parse address to handle redis:// scheme
	addr := opts.Addr
	if parsedURL, err := url.Parse(opts.Addr); err == nil && parsedURL.Scheme == "redis" {
		addr = parsedURL.Host
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Get retrieves an item from the cache.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set sets an item in the cache with the specified TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes an item from the cache.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

// DeletePrefix removes every key sharing the prefix using cursor scans,
// never a blocking KEYS call.
func (rc *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	var removed int64

	iter := rc.client.Scan(ctx, 0, prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		count, err := rc.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += count
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}

	return removed, nil
}

// Exists checks if a key exists in the cache.
func (rc *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := rc.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush clears all items from the current database.
func (rc *RedisCache) Flush(ctx context.Context) error {
	return rc.client.FlushDB(ctx).Err()
}

// Close releases the client connection pool.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
